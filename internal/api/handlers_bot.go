package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gopost/promobot/internal/bot"
	"github.com/gopost/promobot/internal/config"
	"github.com/gopost/promobot/internal/logger"
)

func (r *Router) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, r.bot.Status(c.Request.Context()))
}

func (r *Router) startBot(c *gin.Context) {
	changed := r.bot.Start()
	if changed {
		r.logger.Info("bot activated via api")
	}
	c.JSON(http.StatusOK, gin.H{"active": true, "changed": changed})
}

func (r *Router) stopBot(c *gin.Context) {
	changed := r.bot.Stop()
	if changed {
		r.logger.Info("bot deactivated via api")
	}
	c.JSON(http.StatusOK, gin.H{"active": false, "changed": changed})
}

// runCycle triggers a monitoring cycle immediately. Returns 409 when a
// cycle is already in flight.
func (r *Router) runCycle(c *gin.Context) {
	summary, err := r.bot.RunCycle(c.Request.Context())
	if err != nil {
		if errors.Is(err, bot.ErrCycleRunning) {
			c.JSON(http.StatusConflict, gin.H{"error": "a cycle is already running"})
			return
		}
		r.logger.Error("manual cycle failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cycle failed", "summary": summary})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (r *Router) getConfig(c *gin.Context) {
	c.JSON(http.StatusOK, r.bot.CurrentConfig(c.Request.Context()))
}

func (r *Router) updateConfig(c *gin.Context) {
	var bc config.BotConfig
	if err := c.ShouldBindJSON(&bc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if err := bc.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := r.bot.UpdateConfig(c.Request.Context(), bc); err != nil {
		r.logger.Error("failed to update bot config", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, bc)
}
