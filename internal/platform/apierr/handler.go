package apierr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// HTTPErrorHandler converts service errors into the API's JSON error shape:
// field validation errors become 400 {"errors": {...}}, ErrForbidden 403,
// ErrNotFound 404, echo.HTTPError passes through, and anything else is a 500
// with the detail kept out of the response body.
func HTTPErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			status int
			body   interface{}
		)

		if fields, ok := AsFields(err); ok {
			status = http.StatusBadRequest
			body = map[string]interface{}{"errors": fields}
		} else if errors.Is(err, ErrForbidden) {
			status = http.StatusForbidden
			body = map[string]string{"detail": "You do not have permission to perform this action."}
		} else if errors.Is(err, ErrNotFound) {
			status = http.StatusNotFound
			body = map[string]string{"detail": "Not found."}
		} else if he := (*echo.HTTPError)(nil); errors.As(err, &he) {
			status = he.Code
			body = map[string]interface{}{"detail": he.Message}
		} else {
			logger.Error().Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Msg("unhandled error")
			status = http.StatusInternalServerError
			body = map[string]string{"detail": "internal server error"}
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}
