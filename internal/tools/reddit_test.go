package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedditTokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "client-id", user)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"test-access-token","token_type":"bearer","expires_in":3600}`)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestHotPosts_ListsTitles(t *testing.T) {
	t.Parallel()

	tokenServer := newRedditTokenServer(t)

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/r/solana/hot", r.URL.Path)
		require.Equal(t, "3", r.URL.Query().Get("limit"))
		require.Equal(t, "crypto-scout/1.0", r.Header.Get("User-Agent"))
		require.Equal(t, "Bearer test-access-token", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"data":{"children":[
			{"data":{"title":"Validator update"}},
			{"data":{"title":"Fee market discussion"}},
			{"data":{"title":"New wallet release"}}
		]}}`)
	}))
	t.Cleanup(apiServer.Close)

	client := NewRedditClient("client-id", "client-secret", "crypto-scout/1.0", apiServer.URL, tokenServer.URL)
	result := client.HotPosts(context.Background(), "solana", 3)

	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, "Hot posts in r/solana:\n- Validator update\n- Fee market discussion\n- New wallet release", result.Result)
}

func TestHotPosts_DefaultLimit(t *testing.T) {
	t.Parallel()

	tokenServer := newRedditTokenServer(t)

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "5", r.URL.Query().Get("limit"))
		fmt.Fprint(w, `{"data":{"children":[{"data":{"title":"only post"}}]}}`)
	}))
	t.Cleanup(apiServer.Close)

	client := NewRedditClient("client-id", "client-secret", "crypto-scout/1.0", apiServer.URL, tokenServer.URL)
	result := client.HotPosts(context.Background(), "cryptocurrency", 0)

	assert.Equal(t, StatusSuccess, result.Status)
}

func TestHotPosts_EmptyListing(t *testing.T) {
	t.Parallel()

	tokenServer := newRedditTokenServer(t)

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"children":[]}}`)
	}))
	t.Cleanup(apiServer.Close)

	client := NewRedditClient("client-id", "client-secret", "crypto-scout/1.0", apiServer.URL, tokenServer.URL)
	result := client.HotPosts(context.Background(), "emptysub", 5)

	assert.Equal(t, StatusNoData, result.Status)
	assert.Equal(t, "No recent hot posts found in r/emptysub.", result.Result)
}

func TestHotPosts_PrivateSubreddit(t *testing.T) {
	t.Parallel()

	tokenServer := newRedditTokenServer(t)

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	t.Cleanup(apiServer.Close)

	client := NewRedditClient("client-id", "client-secret", "crypto-scout/1.0", apiServer.URL, tokenServer.URL)
	result := client.HotPosts(context.Background(), "privatesub", 5)

	assert.Equal(t, StatusError, result.Status)
	assert.Contains(t, result.Result, "Error accessing r/privatesub.")
	assert.Contains(t, result.Result, "status 403")
}

func TestHotPosts_MissingCredentialsOrSubreddit(t *testing.T) {
	t.Parallel()

	unconfigured := NewRedditClient("", "", "", "", "")
	result := unconfigured.HotPosts(context.Background(), "solana", 5)
	assert.Equal(t, StatusError, result.Status)
	assert.Equal(t, "Reddit API credentials not configured.", result.Result)

	configured := NewRedditClient("client-id", "client-secret", "crypto-scout/1.0", "", "")
	result = configured.HotPosts(context.Background(), "", 5)
	assert.Equal(t, "Missing subreddit name.", result.Result)
}
