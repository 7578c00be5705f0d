package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"azv-admin-api/middleware"
	"azv-admin-api/repository"
	"azv-admin-api/types"
	"azv-admin-api/upstream"

	"github.com/gin-gonic/gin"
)

// statusClientClosed is logged when the dashboard went away before the answer was ready.
const statusClientClosed = 499

// respondError maps backend, storage and context failures to the API envelope.
// A rejected backend credential answers 401 but leaves the session in place.
func respondError(c *gin.Context, err error) {
	if errors.Is(err, context.Canceled) {
		c.AbortWithStatus(statusClientClosed)
		return
	}
	if ue, ok := upstream.AsError(err); ok {
		switch {
		case ue.Unauthorized():
			c.JSON(http.StatusUnauthorized, types.NewErrorResponse(types.ErrorCodeUnauthorized, ue.Message))
		case ue.Validation():
			c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, ue.Message))
		case ue.NotFound():
			c.JSON(http.StatusNotFound, types.NewErrorResponse(types.ErrorCodeNotFound, ue.Message))
		default:
			c.JSON(http.StatusBadGateway, types.NewErrorResponseWithDetails(types.ErrorCodeUpstream, ue.Message, map[string]interface{}{
				"status": ue.Status,
			}))
		}
		return
	}
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, types.NewErrorResponse(types.ErrorCodeNotFound, "Not found"))
		return
	}
	slog.Error("request failed", "rid", c.GetString(middleware.RequestIDKey), "path", c.FullPath(), "err", err)
	c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, "Internal error"))
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, msg))
}

// pathID parses a positive integer path parameter, answering 400 otherwise.
func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		badRequest(c, "Invalid ID")
		return 0, false
	}
	return id, true
}
