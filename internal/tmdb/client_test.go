package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/3/", "secret-token", 2*time.Second, nil)
}

func TestSearchByTitle(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/3/search/movie", r.URL.Path)
		assert.Equal(t, "The Matrix", r.URL.Query().Get("query"))
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":1,"results":[
			{"id":603,"title":"The Matrix","release_date":"1999-03-31","overview":"Neo","vote_average":8.2,"backdrop_path":"/m.jpg"},
			{"id":604,"title":"The Matrix Reloaded","release_date":"","overview":"","vote_average":0,"backdrop_path":null}
		],"total_results":2}`))
	})

	got, err := client.SearchByTitle(context.Background(), "The Matrix")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(603), got[0].ID)
	assert.Equal(t, "1999-03-31", got[0].ReleaseDate)
	assert.Equal(t, "/m.jpg", got[0].BackdropPath)
	assert.Equal(t, "The Matrix Reloaded", got[1].Title)
	assert.Empty(t, got[1].BackdropPath)
}

func TestSearchByTitleNoResults(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"page":1,"results":[],"total_results":0}`))
	})

	got, err := client.SearchByTitle(context.Background(), "zzzz")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFetchByID(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/3/movie/27205", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":27205,"title":"Inception","release_date":"2010-07-15",
			"overview":"Cobb steals secrets.","vote_average":8.369,"backdrop_path":"/s3TBrRGB1iav7gFOCNx3H31MoES.jpg"}`))
	})

	d, err := client.FetchByID(context.Background(), 27205)
	require.NoError(t, err)
	assert.Equal(t, "Inception", d.Title)
	assert.Equal(t, 8.369, d.VoteAverage)
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		notFound bool
	}{
		{"not found", http.StatusNotFound, `{"status_code":34}`, true},
		{"unauthorized", http.StatusUnauthorized, `{"status_code":7}`, false},
		{"server error", http.StatusInternalServerError, ``, false},
		{"malformed json", http.StatusOK, `{"id":`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.FetchByID(context.Background(), 1)
			require.Error(t, err)
			if tt.notFound {
				assert.ErrorIs(t, err, ErrNotFound)
				return
			}
			assert.ErrorIs(t, err, ErrUpstream)
		})
	}
}

func TestClientStatusIsExposed(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.SearchByTitle(context.Background(), "x")
	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusServiceUnavailable, ue.StatusCode)
}

func TestClientTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := NewClient(srv.URL, "Bearer already-prefixed", time.Second, nil)

	_, err := client.SearchByTitle(context.Background(), "x")
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, "Bearer already-prefixed", client.token)
}

func TestDetailYear(t *testing.T) {
	y, err := (&Detail{ReleaseDate: "2010-07-15"}).Year()
	require.NoError(t, err)
	assert.Equal(t, 2010, y)

	for _, bad := range []string{"", "2010", "15/07/2010", "2010-13-01"} {
		_, err := (&Detail{ReleaseDate: bad}).Year()
		assert.ErrorIs(t, err, ErrUpstream, bad)
	}
}

func TestDetailRating(t *testing.T) {
	assert.Equal(t, 8.4, (&Detail{VoteAverage: 8.369}).Rating())
	assert.Equal(t, 7.0, (&Detail{VoteAverage: 7}).Rating())
	assert.Equal(t, 10.0, (&Detail{VoteAverage: 10.04}).Rating())
}

func TestDetailImageURL(t *testing.T) {
	const prefix = "https://image.tmdb.org/t/p/w500"

	u, err := (&Detail{BackdropPath: "/b.jpg", PosterPath: "/p.jpg"}).ImageURL(prefix)
	require.NoError(t, err)
	assert.Equal(t, prefix+"/b.jpg", u)

	u, err = (&Detail{PosterPath: "/p.jpg"}).ImageURL(prefix + "/")
	require.NoError(t, err)
	assert.Equal(t, prefix+"/p.jpg", u)

	_, err = (&Detail{ID: 9}).ImageURL(prefix)
	assert.ErrorIs(t, err, ErrUpstream)
}
