package router

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/top-movies/internal/form"
	"github.com/iliyamo/top-movies/internal/handler"
	"github.com/iliyamo/top-movies/internal/middleware"
	"github.com/iliyamo/top-movies/internal/web"
)

// Options are the pieces New wires into the Echo instance.
type Options struct {
	Movies        *handler.MovieHandler
	DB            handler.Pinger // nil skips the database health check
	SessionSecret string
	CSRFTTL       time.Duration
	SearchLimit   echo.MiddlewareFunc // nil disables rate limiting
	Log           hclog.Logger
}

// New builds the Echo instance serving the movie list: renderer, validator,
// error page, request logging and all routes.
func New(opts Options) (*echo.Echo, error) {
	log := opts.Log
	if log == nil {
		log = hclog.NewNullLogger()
	}
	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.Validator = form.NewValidator()
	e.HTTPErrorHandler = handler.ErrorHandler(log)

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			log.Error("panic recovered", "uri", c.Request().RequestURI, "error", err, "stack", string(stack))
			return err
		},
	}))
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			log.Info("request", "id", v.RequestID, "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))

	RegisterRoutes(e, opts.DB)
	RegisterMovies(e, opts.Movies, Guards{
		CSRF:        middleware.CSRF(opts.SessionSecret, opts.CSRFTTL),
		LinkToken:   middleware.RequireCSRFToken(opts.SessionSecret),
		SearchLimit: opts.SearchLimit,
	})
	return e, nil
}
