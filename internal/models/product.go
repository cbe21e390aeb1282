package models

import (
	"database/sql/driver"
	"strings"
)

// Product represents a promoted product and the keywords that make a
// discussion relevant to it.
type Product struct {
	ID          int64    `db:"id"          json:"id"`
	Name        string   `db:"name"        json:"name"`
	Description string   `db:"description" json:"description"`
	URL         string   `db:"url"         json:"url"`
	Keywords    Keywords `db:"keywords"    json:"keywords"`
}

// Keywords is a comma-separated list in the database, a string slice
// everywhere else.
type Keywords []string

// Value implements driver.Valuer for sqlx binding.
func (k Keywords) Value() (driver.Value, error) {
	return strings.Join(k, ","), nil
}

// Scan implements sql.Scanner for sqlx binding.
func (k *Keywords) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case nil:
		*k = nil
		return nil
	default:
		return ErrInvalidKeywords
	}
	if raw == "" {
		*k = nil
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make(Keywords, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	*k = out
	return nil
}

// ProductCreateRequest represents the request payload for creating a product
type ProductCreateRequest struct {
	Name        string   `binding:"required,min=1,max=255" json:"name"`
	Description string   `binding:"max=2000"               json:"description"`
	URL         string   `binding:"required,url"           json:"url"`
	Keywords    []string `binding:"required,min=1"         json:"keywords"`
}

// ProductUpdateRequest represents the request payload for updating a product
type ProductUpdateRequest struct {
	Name        *string  `binding:"omitempty,min=1,max=255" json:"name"`
	Description *string  `binding:"omitempty,max=2000"      json:"description"`
	URL         *string  `binding:"omitempty,url"           json:"url"`
	Keywords    []string `json:"keywords"`
}
