package handler

import (
	"errors"
	"net/http"

	"github.com/hashicorp/go-hclog"
	"github.com/labstack/echo/v4"
)

type errorPage struct {
	Code    int
	Status  string
	Message string
}

// ErrorHandler renders every error returned by a handler as error.html.
// Server-side failures are logged with their internal cause; the page only
// shows the user-facing message.
func ErrorHandler(log hclog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		msg := "Something went wrong on our side. Please try again."
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if s, ok := he.Message.(string); ok {
				msg = s
			} else if code < http.StatusInternalServerError {
				msg = http.StatusText(code)
			}
		}
		if code >= http.StatusInternalServerError {
			log.Error("request failed", "method", c.Request().Method, "uri", c.Request().RequestURI, "status", code, "error", err)
		}

		page := errorPage{Code: code, Status: http.StatusText(code), Message: msg}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.Render(code, "error.html", page)
		}
		if err != nil {
			log.Error("render error page failed", "error", err)
		}
	}
}
