package bot

import (
	"context"

	"github.com/gopost/promobot/internal/logger"
	"github.com/gopost/promobot/internal/models"
)

// Submitter posts a reply to the forum.
type Submitter interface {
	SubmitReply(ctx context.Context, post models.Post, text string) error
}

// gate decides whether a composed reply actually goes out. In dry-run
// mode the submission is logged and reported as successful without any
// network effect. Errors never escape; a failed submission is false.
type gate struct {
	submitter Submitter // nil means no forum capability configured
	logger    logger.Logger
}

func (g gate) submit(ctx context.Context, post models.Post, text string, dryRun bool) bool {
	if dryRun {
		g.logger.Info("dry run, reply not sent",
			logger.String("post_id", post.ID),
			logger.String("channel", post.Channel),
			logger.String("reply", text),
		)
		return true
	}

	if g.submitter == nil {
		g.logger.Warn("no forum credentials configured, reply skipped",
			logger.String("post_id", post.ID),
		)
		return false
	}

	if err := g.submitter.SubmitReply(ctx, post, text); err != nil {
		g.logger.Error("failed to submit reply",
			logger.String("post_id", post.ID),
			logger.String("channel", post.Channel),
			logger.Error(err),
		)
		return false
	}

	return true
}
