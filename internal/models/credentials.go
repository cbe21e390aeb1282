package models

// MaskedSecret replaces stored secret values in API responses.
const MaskedSecret = "••••••••"

// ForumCredentials holds the OAuth password-grant credentials for the
// forum API.
type ForumCredentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Username     string `json:"username"`
	Password     string `json:"password"`
}

// Complete reports whether every field is set.
func (c ForumCredentials) Complete() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.Username != "" && c.Password != ""
}

// Masked returns a copy safe to return from the API.
func (c ForumCredentials) Masked() ForumCredentials {
	if c.ClientSecret != "" {
		c.ClientSecret = MaskedSecret
	}
	if c.Password != "" {
		c.Password = MaskedSecret
	}
	return c
}

// GeneratorCredentials holds the API key for the generative text backend.
type GeneratorCredentials struct {
	APIKey string `json:"api_key"`
}

// Complete reports whether the key is set.
func (c GeneratorCredentials) Complete() bool {
	return c.APIKey != ""
}

// Masked returns a copy safe to return from the API.
func (c GeneratorCredentials) Masked() GeneratorCredentials {
	if c.APIKey != "" {
		c.APIKey = MaskedSecret
	}
	return c
}
