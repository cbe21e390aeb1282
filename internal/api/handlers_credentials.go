package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gopost/promobot/internal/logger"
	"github.com/gopost/promobot/internal/models"
)

// getCredentials returns the stored credentials with secret fields
// replaced by a placeholder.
func (r *Router) getCredentials(c *gin.Context) {
	ctx := c.Request.Context()
	response := gin.H{}

	forum, err := r.store.GetForumCredentials(ctx)
	switch {
	case err == nil:
		response["forum"] = forum.Masked()
	case errors.Is(err, models.ErrNotFound):
		response["forum"] = nil
	default:
		r.handleStoreError(c, err, "credentials")
		return
	}

	gen, err := r.store.GetGeneratorCredentials(ctx)
	switch {
	case err == nil:
		configured := gen.Complete()
		response["generator"] = gin.H{"configured": configured}
	case errors.Is(err, models.ErrNotFound):
		response["generator"] = gin.H{"configured": false}
	default:
		r.handleStoreError(c, err, "credentials")
		return
	}

	c.JSON(http.StatusOK, response)
}

func (r *Router) updateForumCredentials(c *gin.Context) {
	var creds models.ForumCredentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if !creds.Complete() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "all credential fields are required"})
		return
	}

	ctx := c.Request.Context()
	if err := r.store.SaveForumCredentials(ctx, creds); err != nil {
		r.handleStoreError(c, err, "credentials")
		return
	}

	if r.applier != nil {
		if err := r.applier.ApplyForumCredentials(ctx, creds); err != nil {
			r.logger.Error("saved forum credentials but failed to apply them", logger.Error(err))
			c.JSON(http.StatusOK, gin.H{"saved": true, "applied": false, "error": err.Error()})
			return
		}
	}

	r.logger.Info("forum credentials updated", logger.String("username", creds.Username))
	c.JSON(http.StatusOK, gin.H{"saved": true, "applied": r.applier != nil})
}

func (r *Router) updateGeneratorCredentials(c *gin.Context) {
	var creds models.GeneratorCredentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if !creds.Complete() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "api_key is required"})
		return
	}

	ctx := c.Request.Context()
	if err := r.store.SaveGeneratorCredentials(ctx, creds); err != nil {
		r.handleStoreError(c, err, "credentials")
		return
	}

	if r.applier != nil {
		if err := r.applier.ApplyGeneratorCredentials(ctx, creds); err != nil {
			r.logger.Error("saved generator credentials but failed to apply them", logger.Error(err))
			c.JSON(http.StatusOK, gin.H{"saved": true, "applied": false, "error": err.Error()})
			return
		}
	}

	r.logger.Info("generator credentials updated")
	c.JSON(http.StatusOK, gin.H{"saved": true, "applied": r.applier != nil})
}

// testCredentials verifies the forum credentials against the live auth
// endpoint.
func (r *Router) testCredentials(c *gin.Context) {
	if r.applier == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no forum client configured"})
		return
	}
	if err := r.applier.VerifyForum(c.Request.Context()); err != nil {
		c.JSON(http.StatusOK, gin.H{"forum": gin.H{"ok": false, "error": err.Error()}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"forum": gin.H{"ok": true}})
}
