package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gopost/promobot/internal/logger"
)

func (r *Router) getStats(c *gin.Context) {
	ctx := c.Request.Context()

	response := gin.H{
		"today":         r.bot.State().Counters(),
		"total_replies": r.bot.State().TotalReplies(),
	}

	history, err := r.store.ListDailyStats(ctx, 30)
	if err != nil {
		r.logger.Error("failed to load daily stats", logger.Error(err))
	} else {
		response["history"] = history
	}

	if r.tracker != nil {
		cfg := r.bot.CurrentConfig(ctx)
		stats, err := r.tracker.GetStats(ctx, cfg.Channels)
		if err != nil {
			r.logger.Error("failed to load channel metrics", logger.Error(err))
		} else {
			response["channels"] = stats
		}
	}

	c.JSON(http.StatusOK, response)
}

func (r *Router) getRecentReplies(c *gin.Context) {
	if r.tracker == nil {
		c.JSON(http.StatusOK, gin.H{"replies": []any{}, "count": 0})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit parameter"})
		return
	}

	replies, err := r.tracker.GetRecentReplies(c.Request.Context(), limit)
	if err != nil {
		r.logger.Error("failed to load recent replies", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"replies": replies, "count": len(replies)})
}
