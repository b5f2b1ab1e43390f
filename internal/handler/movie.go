// Package handler defines the HTTP handlers of the movie list.  Every
// handler returns an *echo.HTTPError for user-visible failures; ErrorHandler
// turns those into an error page.
package handler

import (
	"context"  // context is passed to the metadata client and publisher
	"errors"   // errors matches repository and client sentinels
	"net/http" // http provides status code constants
	"strconv"  // strconv parses identifiers from the URL

	"github.com/hashicorp/go-hclog"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/top-movies/internal/config"
	"github.com/iliyamo/top-movies/internal/form"
	"github.com/iliyamo/top-movies/internal/middleware"
	"github.com/iliyamo/top-movies/internal/model"
	"github.com/iliyamo/top-movies/internal/queue"
	"github.com/iliyamo/top-movies/internal/ranking"
	"github.com/iliyamo/top-movies/internal/repository"
	"github.com/iliyamo/top-movies/internal/service"
	"github.com/iliyamo/top-movies/internal/tmdb"
)

// MetadataClient is the part of the TMDB client the handlers use.
type MetadataClient interface {
	SearchByTitle(ctx context.Context, query string) ([]tmdb.Candidate, error)
	FetchByID(ctx context.Context, id uint64) (*tmdb.Detail, error)
}

// MovieHandler bundles the dependencies of the five page handlers.
type MovieHandler struct {
	Repo      *repository.MovieRepo // Repo persists movies
	Metadata  MetadataClient        // Metadata searches the external movie database
	Events    service.Publisher     // Events receives activity after each mutation
	Log       hclog.Logger
	ImageBase string // ImageBase prefixes poster/backdrop paths
	ListOrder string // ListOrder is config.ListByRating or config.ListRecent
}

// NewMovieHandler constructs a MovieHandler and panics if a required
// dependency is nil.
func NewMovieHandler(repo *repository.MovieRepo, metadata MetadataClient, events service.Publisher, log hclog.Logger, imageBase, listOrder string) *MovieHandler {
	if repo == nil || metadata == nil {
		panic("nil dependency passed to NewMovieHandler")
	}
	if events == nil {
		events = service.NopPublisher{}
	}
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &MovieHandler{
		Repo:      repo,
		Metadata:  metadata,
		Events:    events,
		Log:       log,
		ImageBase: imageBase,
		ListOrder: listOrder,
	}
}

type listPage struct {
	Movies []*model.Movie
	CSRF   string
}

type editPage struct {
	Movie  *model.Movie
	Form   form.RateForm
	Errors form.Errors
	CSRF   string
}

type addPage struct {
	Form    form.AddForm
	Errors  form.Errors
	Message string
	CSRF    string
}

type selectPage struct {
	Query      string
	Candidates []tmdb.Candidate
	CSRF       string
}

// List handles GET / and renders every movie with its rank.  Ranks are
// computed from the current ratings on each request and never stored.
func (h *MovieHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		movies []*model.Movie
		err    error
	)
	if h.ListOrder == config.ListRecent {
		movies, err = h.Repo.ListRecent(ctx)
	} else {
		movies, err = h.Repo.ListByRating(ctx)
	}
	if err != nil {
		return h.dbError("list movies", err)
	}
	ranking.Assign(movies)
	return c.Render(http.StatusOK, "index.html", listPage{Movies: movies, CSRF: csrfToken(c)})
}

// EditPage handles GET /edit/:id and renders the rating form pre-filled
// with the stored rating and review.
func (h *MovieHandler) EditPage(c echo.Context) error {
	movie, err := h.loadMovie(c)
	if err != nil {
		return err
	}
	f := form.RateForm{Rating: strconv.FormatFloat(movie.Rating, 'f', -1, 64), Review: movie.Review}
	return c.Render(http.StatusOK, "edit.html", editPage{Movie: movie, Form: f, CSRF: csrfToken(c)})
}

// Edit handles POST /edit/:id.  An invalid form is shown again with field
// errors and nothing is written; a valid one updates rating and review and
// redirects to the list.
func (h *MovieHandler) Edit(c echo.Context) error {
	movie, err := h.loadMovie(c)
	if err != nil {
		return err
	}
	var f form.RateForm
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "The form could not be read.")
	}
	f.Sanitize()
	if errs, ok := h.validate(c, &f); !ok {
		return c.Render(http.StatusUnprocessableEntity, "edit.html", editPage{Movie: movie, Form: f, Errors: errs, CSRF: csrfToken(c)})
	}

	ctx := c.Request().Context()
	if err := h.Repo.UpdateRatingReview(ctx, movie.ID, f.Value(), f.Review); err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "That movie is not in your list.")
		}
		return h.dbError("update movie", err)
	}
	h.Log.Info("movie rated", "movie_id", movie.ID, "rating", f.Value())
	h.publish(ctx, queue.NewMovieEvent(queue.MovieRated, movie.ID, movie.Title, movie.Year, f.Value(), f.Review))
	return c.Redirect(http.StatusSeeOther, "/")
}

// AddPage handles GET /add.
func (h *MovieHandler) AddPage(c echo.Context) error {
	return c.Render(http.StatusOK, "add.html", addPage{CSRF: csrfToken(c)})
}

// Add handles POST /add: it validates the title, searches the metadata
// service and lists every candidate for the user to pick from.
func (h *MovieHandler) Add(c echo.Context) error {
	var f form.AddForm
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "The form could not be read.")
	}
	f.Sanitize()
	if errs, ok := h.validate(c, &f); !ok {
		return c.Render(http.StatusUnprocessableEntity, "add.html", addPage{Form: f, Errors: errs, CSRF: csrfToken(c)})
	}

	candidates, err := h.Metadata.SearchByTitle(c.Request().Context(), f.Title)
	if err != nil {
		h.Log.Error("movie search failed", "query", f.Title, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "The movie database could not be searched right now. Please try again later.").SetInternal(err)
	}
	return c.Render(http.StatusOK, "select.html", selectPage{Query: f.Title, Candidates: candidates, CSRF: csrfToken(c)})
}

// Select handles GET and POST /select/:externalId; both need a form token.
// It fetches the chosen candidate, stores it and redirects to the edit page
// of the new record so the user can rate it.
func (h *MovieHandler) Select(c echo.Context) error {
	externalID, err := strconv.ParseUint(c.Param("externalId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Unknown movie.")
	}
	ctx := c.Request().Context()

	detail, err := h.Metadata.FetchByID(ctx, externalID)
	if err != nil {
		if errors.Is(err, tmdb.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "The movie database has no movie with that id.")
		}
		h.Log.Error("movie fetch failed", "external_id", externalID, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "The movie database could not be reached right now. Please try again later.").SetInternal(err)
	}

	movie, err := h.newMovie(detail)
	if err != nil {
		h.Log.Error("movie detail unusable", "external_id", externalID, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "The movie database returned incomplete details for this movie.").SetInternal(err)
	}

	if err := h.Repo.Create(ctx, movie); err != nil {
		if errors.Is(err, repository.ErrDuplicateMovie) {
			return c.Render(http.StatusConflict, "add.html", addPage{
				Message: "\"" + movie.Title + "\" is already in your list.",
				CSRF:    csrfToken(c),
			})
		}
		return h.dbError("create movie", err)
	}
	h.Log.Info("movie added", "movie_id", movie.ID, "external_id", externalID, "title", movie.Title)
	h.publish(ctx, queue.NewMovieEvent(queue.MovieAdded, movie.ID, movie.Title, movie.Year, movie.Rating, ""))
	return c.Redirect(http.StatusSeeOther, "/edit/"+strconv.FormatUint(movie.ID, 10))
}

// Delete handles POST and DELETE /delete/:id.  Deleting a movie that does
// not exist, including a second delete of the same id, is a 404.
func (h *MovieHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	movie, err := h.Repo.GetByID(ctx, id)
	if err == nil {
		err = h.Repo.Delete(ctx, id)
	}
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "That movie is not in your list.")
		}
		return h.dbError("delete movie", err)
	}
	h.Log.Info("movie deleted", "movie_id", id)
	h.publish(ctx, queue.NewMovieEvent(queue.MovieDeleted, id, movie.Title, movie.Year, movie.Rating, ""))
	if c.Request().Method == http.MethodDelete {
		return c.NoContent(http.StatusNoContent)
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// newMovie builds the record stored for a fetched candidate.  The review is
// left empty until the user edits the movie.
func (h *MovieHandler) newMovie(d *tmdb.Detail) (*model.Movie, error) {
	year, err := d.Year()
	if err != nil {
		return nil, err
	}
	img, err := d.ImageURL(h.ImageBase)
	if err != nil {
		return nil, err
	}
	if d.Title == "" || d.Overview == "" {
		return nil, errors.New("title or overview missing")
	}
	return &model.Movie{
		Title:       d.Title,
		Year:        year,
		Description: d.Overview,
		Rating:      d.Rating(),
		ImgURL:      img,
	}, nil
}

// loadMovie resolves the :id path parameter to a stored movie.
func (h *MovieHandler) loadMovie(c echo.Context) (*model.Movie, error) {
	id, err := parseID(c)
	if err != nil {
		return nil, err
	}
	movie, err := h.Repo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "That movie is not in your list.")
		}
		return nil, h.dbError("get movie", err)
	}
	return movie, nil
}

// validate runs the echo validator and reports field errors.
func (h *MovieHandler) validate(c echo.Context, f interface{}) (form.Errors, bool) {
	err := c.Validate(f)
	if err == nil {
		return nil, true
	}
	var errs form.Errors
	if errors.As(err, &errs) {
		return errs, false
	}
	h.Log.Warn("validation failed unexpectedly", "error", err)
	return form.Errors{"form": "The form could not be validated."}, false
}

func (h *MovieHandler) publish(ctx context.Context, ev queue.MovieEvent) {
	if err := h.Events.Publish(ctx, ev); err != nil {
		h.Log.Warn("publish movie event failed", "type", ev.Type, "movie_id", ev.MovieID, "error", err)
	}
}

func (h *MovieHandler) dbError(op string, err error) error {
	h.Log.Error("database error", "op", op, "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "Something went wrong on our side. Please try again.").SetInternal(err)
}

func parseID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "That movie is not in your list.")
	}
	return id, nil
}

func csrfToken(c echo.Context) string {
	tok, _ := c.Get(middleware.CSRFContextKey).(string)
	return tok
}
