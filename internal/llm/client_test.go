package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_ValidatesConfig(t *testing.T) {
	t.Parallel()

	_, err := NewClient(&Config{APIURL: "https://example.com", Model: "m"})
	assert.ErrorContains(t, err, "API key is required")

	_, err = NewClient(&Config{APIKey: "k", Model: "m"})
	assert.ErrorContains(t, err, "API URL is required")

	_, err = NewClient(&Config{APIKey: "k", APIURL: "https://example.com"})
	assert.ErrorContains(t, err, "model is required")

	client, err := NewClient(&Config{APIKey: "k", APIURL: "https://example.com", Model: "m"})
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestSimpleChat_RoundTrip(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)
		require.Equal(t, "system", req.Messages[0].Role)
		require.Equal(t, "be brief", req.Messages[0].Content)
		require.Equal(t, "user", req.Messages[1].Role)

		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"hello there"}}]}`)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(&Config{APIKey: "test-key", APIURL: server.URL, Model: "test-model"})
	require.NoError(t, err)

	reply, err := client.SimpleChat(context.Background(), "hi", "be brief")
	require.NoError(t, err)
	assert.Equal(t, "hello there", reply)
}

func TestSimpleChat_APIErrorBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"invalid api key","type":"auth_error","code":"401"}}`)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(&Config{APIKey: "bad-key", APIURL: server.URL, Model: "test-model"})
	require.NoError(t, err)

	_, err = client.SimpleChat(context.Background(), "hi", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestSimpleChat_NoChoices(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(&Config{APIKey: "test-key", APIURL: server.URL, Model: "test-model"})
	require.NoError(t, err)

	_, err = client.SimpleChat(context.Background(), "hi", "")
	assert.ErrorContains(t, err, "no choices in response")
}
