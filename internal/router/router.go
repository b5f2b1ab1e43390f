package router // package router defines how HTTP routes are registered

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/top-movies/internal/handler" // import the handlers that implement the pages
)

// RegisterRoutes registers the health check on the provided Echo instance.
// It sits outside the CSRF-protected page routes so probes never need a token.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// Guards are the middlewares wrapped around the page routes.  A nil guard
// is skipped.
type Guards struct {
	CSRF        echo.MiddlewareFunc // every page: checks unsafe methods, issues form tokens
	LinkToken   echo.MiddlewareFunc // GET routes that change state
	SearchLimit echo.MiddlewareFunc // routes that call the movie metadata service
}

// RegisterMovies registers the page routes of the movie list.
func RegisterMovies(e *echo.Echo, h *handler.MovieHandler, g Guards) {
	page := chain(g.CSRF)
	search := chain(g.CSRF, g.SearchLimit)

	e.GET("/", h.List, page...)

	e.GET("/edit/:id", h.EditPage, page...)
	e.POST("/edit/:id", h.Edit, page...)

	e.GET("/add", h.AddPage, page...)
	e.POST("/add", h.Add, search...)

	// Selecting stores a movie, so the link form must carry a token too.
	e.GET("/select/:externalId", h.Select, chain(g.CSRF, g.LinkToken, g.SearchLimit)...)
	e.POST("/select/:externalId", h.Select, search...)

	// Deletion requires a mutating method; GET /delete/:id answers 405.
	e.POST("/delete/:id", h.Delete, page...)
	e.DELETE("/delete/:id", h.Delete, page...)
}

func chain(mws ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(mws))
	for _, mw := range mws {
		if mw != nil {
			out = append(out, mw)
		}
	}
	return out
}
