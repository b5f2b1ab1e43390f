package middleware // package middleware contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes and method names
	"time"     // token lifetime

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/top-movies/internal/utils"
)

// CSRFContextKey is the echo.Context key under which a fresh token is
// stored for templates.
const CSRFContextKey = "csrf_token"

// CSRFFormField and CSRFHeader are where requests carry the token.  For GET
// requests the form field is read from the query string.
const (
	CSRFFormField = "csrf_token"
	CSRFHeader    = "X-CSRF-Token"
)

var errCSRF = echo.NewHTTPError(http.StatusForbidden, "The form has expired. Please reload the page and try again.")

// CSRF returns an Echo middleware that rejects POST, PUT, PATCH and DELETE
// requests without a valid signed token and issues a fresh token for every
// request so handlers can embed it in rendered forms.
func CSRF(secret string, ttl time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch c.Request().Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
				if err := checkToken(c, secret); err != nil {
					return err
				}
			}
			tok, err := utils.NewCSRFToken(secret, ttl)
			if err != nil {
				return err
			}
			c.Set(CSRFContextKey, tok)
			return next(c)
		}
	}
}

// RequireCSRFToken rejects every request without a valid token, whatever
// its method.  It guards GET routes that change state.
func RequireCSRFToken(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := checkToken(c, secret); err != nil {
				return err
			}
			return next(c)
		}
	}
}

func checkToken(c echo.Context, secret string) error {
	raw := c.Request().Header.Get(CSRFHeader)
	if raw == "" {
		raw = c.FormValue(CSRFFormField)
	}
	if utils.VerifyCSRFToken(secret, raw) != nil {
		return errCSRF
	}
	return nil
}
