package testbackend

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// errorResponse is the backend's error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

// errorHandler renders {"error": "<message>"} for handler errors. Unknown
// routes get a non-JSON body, as the real backend's framework does, so the
// client falls back to its own "endpoint not found" message.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	if errors.Is(err, echo.ErrNotFound) || errors.Is(err, echo.ErrMethodNotAllowed) {
		_ = c.String(http.StatusNotFound, "<h1>Not Found</h1>")
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		_ = c.JSON(he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)})
		return
	}
	_ = c.JSON(http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
}

func fail(status int, msg string) error {
	return echo.NewHTTPError(status, msg)
}
