package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/top-movies/internal/web"
)

func renderError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	renderer, rerr := web.NewRenderer()
	require.NoError(t, rerr)
	e := echo.New()
	e.Renderer = renderer

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	ErrorHandler(hclog.NewNullLogger())(err, c)
	return rec
}

func TestErrorHandlerRendersHTTPError(t *testing.T) {
	rec := renderError(t, echo.NewHTTPError(http.StatusNotFound, "That movie is not in your list."))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "That movie is not in your list.")
	assert.Contains(t, rec.Body.String(), "<title>404 Not Found</title>")
}

func TestErrorHandlerHidesInternalErrors(t *testing.T) {
	rec := renderError(t, errors.New("sql: database is closed"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "database is closed")
	assert.Contains(t, rec.Body.String(), "Something went wrong on our side.")
}

type pingFunc func(context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	tests := []struct {
		name string
		db   Pinger
		code int
		body string
	}{
		{"no database", nil, http.StatusOK, "ok"},
		{"database up", pingFunc(func(context.Context) error { return nil }), http.StatusOK, "ok"},
		{"database down", pingFunc(func(context.Context) error { return errors.New("gone") }), http.StatusServiceUnavailable, "database unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			require.NoError(t, Health(tt.db)(e.NewContext(httptest.NewRequest(http.MethodGet, "/healthz", nil), rec)))
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}
}
