package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/asc2563/regression-thing/internal/providers/terminal"
	"github.com/asc2563/regression-thing/internal/shared/types"
	"github.com/gin-gonic/gin"
)

// bind decodes the JSON body, answering 400 itself on failure
func bind(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		fail(c, fmt.Errorf("%w: %v", types.ErrInvalidRequest, err))
		return false
	}
	return true
}

// respond writes the result envelope for an operation without a value
func respond(c *gin.Context, err error) {
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, types.OK(nil))
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	res := types.Fail(err)
	c.JSON(statusForError(err, res.Code), res)
}

// statusFor maps an error kind to its HTTP status
func statusFor(kind types.ErrorKind) int {
	switch kind {
	case types.KindNotFound:
		return http.StatusNotFound
	case types.KindAlreadyExists:
		return http.StatusConflict
	case types.KindPermissionDenied:
		return http.StatusForbidden
	case types.KindInvalidRequest:
		return http.StatusBadRequest
	case types.KindProcessUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// statusForError refines statusFor for shell errors that carry no kind
func statusForError(err error, kind types.ErrorKind) int {
	switch {
	case errors.Is(err, terminal.ErrQueueFull):
		return http.StatusTooManyRequests
	case errors.Is(err, terminal.ErrBridgeClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, terminal.ErrResizeUnsupported):
		return http.StatusConflict
	default:
		return statusFor(kind)
	}
}
