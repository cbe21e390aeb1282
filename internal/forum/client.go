package forum

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/gopost/promobot/internal/config"
	"github.com/gopost/promobot/internal/logger"
	"github.com/gopost/promobot/internal/models"
)

const (
	defaultTimeout = 15 * time.Second

	// tokenSlack renews the OAuth token this long before it expires.
	tokenSlack = time.Minute
)

// Client talks to a reddit-style forum API. All outbound calls go
// through one rate limiter so fetches and submissions together stay
// under the configured request rate.
type Client struct {
	baseURL    string
	authURL    string
	userAgent  string
	creds      models.ForumCredentials
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     logger.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient creates a forum client. It fails fast on an incomplete
// credential set; token acquisition itself is lazy.
func NewClient(cfg config.ForumConfig, creds models.ForumCredentials, log logger.Logger) (*Client, error) {
	if !creds.Complete() {
		return nil, ErrMissingCredentials
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		authURL:    cfg.AuthURL,
		userAgent:  cfg.UserAgent,
		creds:      creds,
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:     log,
	}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// ensureToken returns a valid bearer token, fetching a fresh one via
// the password grant when the cached token is absent or near expiry.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry.Add(-tokenSlack)) {
		return c.token, nil
	}

	form := url.Values{
		"grant_type": {"password"},
		"username":   {c.creds.Username},
		"password":   {c.creds.Password},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.SetBasicAuth(c.creds.ClientID, c.creds.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token endpoint returned status %d", ErrAuthFailed, resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", ErrAuthFailed
	}

	c.token = tr.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	return c.token, nil
}

func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.userAgent)
	return c.httpClient.Do(req)
}

// listing mirrors the wire format of a channel's post listing.
type listing struct {
	Data struct {
		Children []struct {
			Data struct {
				ID         string  `json:"id"`
				Title      string  `json:"title"`
				SelfText   string  `json:"selftext"`
				Score      int     `json:"score"`
				CreatedUTC float64 `json:"created_utc"`
				Over18     bool    `json:"over_18"`
				Author     string  `json:"author"`
				Permalink  string  `json:"permalink"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// FetchRecent returns up to limit of the newest posts in a channel.
func (c *Client) FetchRecent(ctx context.Context, channel string, limit int) ([]models.Post, error) {
	endpoint := fmt.Sprintf("%s/r/%s/new?limit=%d", c.baseURL, url.PathEscape(channel), limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetch channel %s: %w", channel, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch channel %s: status %d", channel, resp.StatusCode)
	}

	var l listing
	if err := json.NewDecoder(resp.Body).Decode(&l); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}

	posts := make([]models.Post, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		d := child.Data
		posts = append(posts, models.Post{
			ID:           d.ID,
			Channel:      channel,
			Title:        d.Title,
			Body:         d.SelfText,
			Score:        d.Score,
			CreatedAt:    time.Unix(int64(d.CreatedUTC), 0),
			AdultFlagged: d.Over18,
			Author:       d.Author,
			Permalink:    d.Permalink,
		})
	}

	c.logger.Debug("fetched channel",
		logger.String("channel", channel),
		logger.Int("posts", len(posts)),
		logger.Duration("duration", time.Since(start)),
	)

	return posts, nil
}

// SubmitReply posts a comment on the given post.
func (c *Client) SubmitReply(ctx context.Context, post models.Post, text string) error {
	form := url.Values{
		"thing_id": {"t3_" + post.ID},
		"text":     {text},
		"api_type": {"json"},
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+"/api/comment", strings.NewReader(form.Encode()),
	)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.do(ctx, req)
	if err != nil {
		return fmt.Errorf("submit reply to %s: %w", post.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("submit reply to %s: status %d", post.ID, resp.StatusCode)
	}

	return nil
}

// VerifyCredentials checks that a token can be acquired with the
// configured credentials.
func (c *Client) VerifyCredentials(ctx context.Context) error {
	// Force renewal so a stale cached token does not mask bad credentials.
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()

	_, err := c.ensureToken(ctx)
	return err
}
