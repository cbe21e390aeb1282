package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gopost/promobot/internal/logger"
	"github.com/gopost/promobot/internal/models"
)

// parseIDParam extracts and validates the :id path parameter.
func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// handleStoreError maps store errors to HTTP responses.
func (r *Router) handleStoreError(c *gin.Context, err error, resource string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": resource + " not found"})
	case errors.Is(err, models.ErrNoFieldsToUpdate):
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
	default:
		r.logger.Error("store operation failed", logger.String("resource", resource), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
