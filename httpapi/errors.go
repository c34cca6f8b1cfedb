package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/theplant/helix"
	"github.com/theplant/helix/store"
)

// AppError is an error carrying the HTTP status it is reported with.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, nil)
}

func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, message, nil)
}

// toAppError classifies err. Errors that are not recognised become 500s
// whose message does not leak the cause.
func toAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, helix.ErrUnsupportedOperation),
		errors.Is(err, helix.ErrTooManyFilters),
		errors.Is(err, store.ErrIDMismatch),
		errors.Is(err, store.ErrInvalidEntity),
		store.IsInvalidPatch(err):
		return NewAppError(http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, store.ErrNotFound):
		return NewAppError(http.StatusNotFound, err.Error(), err)
	case errors.Is(err, store.ErrVersionConflict),
		errors.Is(err, store.ErrDuplicate):
		return NewAppError(http.StatusConflict, err.Error(), err)
	}
	return NewAppError(http.StatusInternalServerError, "internal server error", err)
}

func abortWithError(c *gin.Context, log *slog.Logger, err error) {
	appErr := toAppError(err)
	if appErr.Code >= http.StatusInternalServerError {
		log.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
	}
	c.AbortWithStatusJSON(appErr.Code, gin.H{"error": appErr.Message})
}
