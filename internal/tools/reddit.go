package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	redditAPIURL   = "https://oauth.reddit.com"
	redditTokenURL = "https://www.reddit.com/api/v1/access_token"

	defaultHotPostLimit = 5
)

// RedditClient wraps the subreddit hot-listing endpoint using app-only OAuth
type RedditClient struct {
	clientID     string
	clientSecret string
	userAgent    string
	apiURL       string
	tokenURL     string
	httpClient   *http.Client
}

// NewRedditClient creates a Reddit client. apiURL and tokenURL are
// overridable for tests; empty selects the real endpoints.
func NewRedditClient(clientID, clientSecret, userAgent, apiURL, tokenURL string) *RedditClient {
	if apiURL == "" {
		apiURL = redditAPIURL
	}
	if tokenURL == "" {
		tokenURL = redditTokenURL
	}
	return &RedditClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		userAgent:    userAgent,
		apiURL:       apiURL,
		tokenURL:     tokenURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type redditListingResponse struct {
	Data struct {
		Children []struct {
			Data struct {
				Title string `json:"title"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// HotPosts fetches the top hot post titles from a subreddit
func (c *RedditClient) HotPosts(ctx context.Context, subreddit string, limit int) ToolResult {
	if c.clientID == "" || c.clientSecret == "" || c.userAgent == "" {
		return Errorf("Reddit API credentials not configured.")
	}
	if subreddit == "" {
		return Errorf("Missing subreddit name.")
	}
	if limit <= 0 {
		limit = defaultHotPostLimit
	}

	conf := &clientcredentials.Config{
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		TokenURL:     c.tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	authed := conf.Client(context.WithValue(ctx, oauth2.HTTPClient, c.httpClient))

	reqURL := fmt.Sprintf("%s/r/%s/hot?limit=%d", c.apiURL, url.PathEscape(subreddit), limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Errorf("An unexpected error occurred: %v", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := authed.Do(req)
	if err != nil {
		return Errorf("Error accessing r/%s. It may be private or non-existent. Details: %v", subreddit, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Errorf("An unexpected error occurred: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Errorf("Error accessing r/%s. It may be private or non-existent. Details: status %d", subreddit, resp.StatusCode)
	}

	var listing redditListingResponse
	if err := json.Unmarshal(body, &listing); err != nil {
		return Errorf("An unexpected error occurred: %v", err)
	}

	titles := make([]string, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		titles = append(titles, "- "+child.Data.Title)
	}
	if len(titles) == 0 {
		return NoData("No recent hot posts found in r/%s.", subreddit)
	}

	return Success("Hot posts in r/%s:\n%s", subreddit, strings.Join(titles, "\n"))
}
