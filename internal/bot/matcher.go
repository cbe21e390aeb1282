package bot

import (
	"sort"
	"strings"

	"github.com/gopost/promobot/internal/models"
)

// Match pairs a selected product with its keyword score. Product is nil
// when nothing scored above zero.
type Match struct {
	Product *models.Product
	Score   int
}

// SelectProduct scores every product against the post's title and body
// and returns the best match. The score is the number of the product's
// keywords found as case-insensitive substrings. Ties go to the lowest
// product ID so selection is reproducible.
func SelectProduct(post models.Post, products []models.Product) Match {
	text := strings.ToLower(post.Text())

	ordered := make([]models.Product, len(products))
	copy(ordered, products)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	best := Match{}
	for i := range ordered {
		score := keywordScore(text, ordered[i].Keywords)
		if score > best.Score {
			best = Match{Product: &ordered[i], Score: score}
		}
	}

	return best
}

func keywordScore(loweredText string, keywords models.Keywords) int {
	score := 0
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(loweredText, strings.ToLower(kw)) {
			score++
		}
	}
	return score
}
