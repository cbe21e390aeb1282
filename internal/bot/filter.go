package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/gopost/promobot/internal/config"
	"github.com/gopost/promobot/internal/models"
)

// Verdict is the outcome of policy evaluation for one post. Reason is
// set only on rejection and names the first failing rule.
type Verdict struct {
	Passed bool
	Reason string
}

// Evaluate checks a post against the policy rules. The checks run in a
// fixed order and the first failure short-circuits the rest: score,
// age, forbidden keywords, adult flag.
func Evaluate(post models.Post, cfg config.BotConfig, now time.Time) Verdict {
	if post.Score < cfg.MinPostScore {
		return Verdict{Reason: fmt.Sprintf("score too low: %d < %d", post.Score, cfg.MinPostScore)}
	}

	maxAge := time.Duration(cfg.MaxPostAgeHours) * time.Hour
	if age := now.Sub(post.CreatedAt); age > maxAge {
		return Verdict{Reason: fmt.Sprintf("post too old: %.1fh > %dh", age.Hours(), cfg.MaxPostAgeHours)}
	}

	text := strings.ToLower(post.Text())
	for _, kw := range cfg.ForbiddenKeywords {
		if kw == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(kw)) {
			return Verdict{Reason: fmt.Sprintf("forbidden keyword: %q", kw)}
		}
	}

	if post.AdultFlagged {
		return Verdict{Reason: "adult content flagged"}
	}

	return Verdict{Passed: true}
}
