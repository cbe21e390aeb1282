package forum

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gopost/promobot/internal/config"
	"github.com/gopost/promobot/internal/logger"
	"github.com/gopost/promobot/internal/models"
)

func testCreds() models.ForumCredentials {
	return models.ForumCredentials{
		ClientID:     "client",
		ClientSecret: "secret",
		Username:     "bot",
		Password:     "pw",
	}
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(config.ForumConfig{
		BaseURL:           srv.URL,
		AuthURL:           srv.URL + "/token",
		UserAgent:         "promobot-test/1.0",
		RequestsPerSecond: 1000,
	}, testCreds(), logger.NewNopLogger())
	require.NoError(t, err)
	return c, srv
}

func tokenHandler(calls *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.FormValue("grant_type") != "password" || r.FormValue("username") != "bot" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok123","expires_in":3600}`))
	}
}

func TestNewClientRequiresCompleteCredentials(t *testing.T) {
	_, err := NewClient(config.ForumConfig{RequestsPerSecond: 1}, models.ForumCredentials{
		ClientID: "only-this",
	}, logger.NewNopLogger())
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestFetchRecent(t *testing.T) {
	var tokenCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/token", tokenHandler(&tokenCalls))
	mux.HandleFunc("/r/golang/new", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok123", r.Header.Get("Authorization"))
		assert.Equal(t, "promobot-test/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "25", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"children":[
			{"data":{"id":"abc","title":"Sleep help","selftext":"body text","score":12,"created_utc":1756500000,"over_18":false,"author":"user1","permalink":"/r/golang/abc"}},
			{"data":{"id":"def","title":"NSFW thing","score":3,"created_utc":1756500100,"over_18":true,"author":"user2","permalink":"/r/golang/def"}}
		]}}`))
	})

	c, _ := newTestClient(t, mux)
	posts, err := c.FetchRecent(context.Background(), "golang", 25)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, "abc", posts[0].ID)
	assert.Equal(t, "golang", posts[0].Channel)
	assert.Equal(t, "Sleep help", posts[0].Title)
	assert.Equal(t, "body text", posts[0].Body)
	assert.Equal(t, 12, posts[0].Score)
	assert.Equal(t, time.Unix(1756500000, 0), posts[0].CreatedAt)
	assert.False(t, posts[0].AdultFlagged)
	assert.True(t, posts[1].AdultFlagged)

	// The token is cached across calls.
	_, err = c.FetchRecent(context.Background(), "golang", 25)
	require.NoError(t, err)
	assert.Equal(t, int32(1), tokenCalls.Load())
}

func TestFetchRecentServerError(t *testing.T) {
	var tokenCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/token", tokenHandler(&tokenCalls))
	mux.HandleFunc("/r/golang/new", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	c, _ := newTestClient(t, mux)
	_, err := c.FetchRecent(context.Background(), "golang", 25)
	assert.ErrorContains(t, err, "502")
}

func TestSubmitReply(t *testing.T) {
	var tokenCalls atomic.Int32
	var submitted atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/token", tokenHandler(&tokenCalls))
	mux.HandleFunc("/api/comment", func(w http.ResponseWriter, r *http.Request) {
		submitted.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "t3_abc", r.FormValue("thing_id"))
		assert.Equal(t, "great reply", r.FormValue("text"))
		w.Write([]byte(`{}`))
	})

	c, _ := newTestClient(t, mux)
	err := c.SubmitReply(context.Background(), models.Post{ID: "abc"}, "great reply")
	require.NoError(t, err)
	assert.Equal(t, int32(1), submitted.Load())
}

func TestSubmitReplyFailure(t *testing.T) {
	var tokenCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/token", tokenHandler(&tokenCalls))
	mux.HandleFunc("/api/comment", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	c, _ := newTestClient(t, mux)
	err := c.SubmitReply(context.Background(), models.Post{ID: "abc"}, "text")
	assert.ErrorContains(t, err, "403")
}

func TestVerifyCredentials(t *testing.T) {
	var tokenCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/token", tokenHandler(&tokenCalls))

	c, _ := newTestClient(t, mux)
	require.NoError(t, c.VerifyCredentials(context.Background()))

	// Verification always re-authenticates.
	require.NoError(t, c.VerifyCredentials(context.Background()))
	assert.Equal(t, int32(2), tokenCalls.Load())
}

func TestVerifyCredentialsRejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	c, _ := newTestClient(t, mux)
	err := c.VerifyCredentials(context.Background())
	assert.ErrorIs(t, err, ErrAuthFailed)
}
