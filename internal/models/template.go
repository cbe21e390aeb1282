package models

import "strings"

// ReplyTemplate is a canned reply used when generative composition is
// unavailable. The placeholders {product_name} and {product_url} are
// substituted at composition time.
type ReplyTemplate struct {
	ID      int64  `db:"id"      json:"id"`
	Content string `db:"content" json:"content"`
}

// Render substitutes the product placeholders in the template body.
func (t ReplyTemplate) Render(productName, productURL string) string {
	out := strings.ReplaceAll(t.Content, "{product_name}", productName)
	out = strings.ReplaceAll(out, "{product_url}", productURL)
	return out
}

// TemplateCreateRequest represents the request payload for creating a reply template
type TemplateCreateRequest struct {
	Content string `binding:"required,min=1,max=2000" json:"content"`
}
