package models

// Persona represents a writing voice used when composing replies.
type Persona struct {
	ID    int64  `db:"id"    json:"id"`
	Name  string `db:"name"  json:"name"`
	Tone  string `db:"tone"  json:"tone"`
	Style string `db:"style" json:"style"`
}

// PersonaCreateRequest represents the request payload for creating a persona
type PersonaCreateRequest struct {
	Name  string `binding:"required,min=1,max=255" json:"name"`
	Tone  string `binding:"required,min=1,max=255" json:"tone"`
	Style string `binding:"required,min=1,max=500" json:"style"`
}

// PersonaUpdateRequest represents the request payload for updating a persona
type PersonaUpdateRequest struct {
	Name  *string `binding:"omitempty,min=1,max=255" json:"name"`
	Tone  *string `binding:"omitempty,min=1,max=255" json:"tone"`
	Style *string `binding:"omitempty,min=1,max=500" json:"style"`
}
