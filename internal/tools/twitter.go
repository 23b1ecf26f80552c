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

	"github.com/abadojack/whatlanggo"

	"github.com/chongdashu/crypto-scout/internal/sentiment"
)

const twitterSearchURL = "https://api.twitter.com/2/tweets/search/recent"

// TwitterClient wraps the recent-search endpoint for community sentiment and
// rumor scouting
type TwitterClient struct {
	bearerToken string
	searchURL   string
	analyzer    *sentiment.Analyzer
	httpClient  *http.Client
}

// NewTwitterClient creates a Twitter client. searchURL is overridable for
// tests; empty selects the real endpoint.
func NewTwitterClient(bearerToken, searchURL string) *TwitterClient {
	if searchURL == "" {
		searchURL = twitterSearchURL
	}
	return &TwitterClient{
		bearerToken: bearerToken,
		searchURL:   searchURL,
		analyzer:    sentiment.NewAnalyzer(),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CommunityInsights summarizes recent community sentiment for a coin:
// overall VADER assessment plus the top discussion themes.
func (c *TwitterClient) CommunityInsights(ctx context.Context, coinName, coinSymbol string) ToolResult {
	if c.bearerToken == "" {
		return Errorf("Could not initialize Twitter client. Please check API credentials.")
	}

	query := buildCoinQuery(coinName, coinSymbol) + " lang:en -is:retweet"
	texts, err := c.searchRecent(ctx, query, 100)
	if err != nil {
		return Errorf("An unexpected error occurred. Details: %v", err)
	}
	if len(texts) == 0 {
		return NoData("No recent community discussion found on Twitter for this coin.")
	}

	// The lang:en operator is advisory; drop anything the detector says is
	// not English before scoring. If that empties the set, score everything.
	english := make([]string, 0, len(texts))
	for _, t := range texts {
		if whatlanggo.DetectLang(t) == whatlanggo.Eng {
			english = append(english, t)
		}
	}
	if len(english) == 0 {
		english = texts
	}

	text := strings.Join(english, " ")
	assessment := sentiment.Classify(c.analyzer.Compound(text))

	themesSummary := ""
	if themes := sentiment.Themes(text, 5); len(themes) > 0 {
		themesSummary = fmt.Sprintf(" Key discussion themes: %s.", strings.Join(themes, ", "))
	}

	return Success("Overall sentiment is %s.%s", assessment, themesSummary)
}

// RumorsAndNews looks for rumor and breaking-news chatter about a coin and
// returns the top matching post as a representative sample
func (c *TwitterClient) RumorsAndNews(ctx context.Context, coinName, coinSymbol string) ToolResult {
	if c.bearerToken == "" {
		return Errorf("Could not initialize Twitter client. Please check API credentials.")
	}

	query := fmt.Sprintf("(%s) (rumor OR news OR announcement OR leak OR speculation) lang:en -is:retweet",
		buildCoinQuery(coinName, coinSymbol))
	texts, err := c.searchRecent(ctx, query, 10)
	if err != nil {
		return Errorf("An unexpected error occurred. Details: %v", err)
	}
	if len(texts) == 0 {
		return NoData("Couldn't find any recent rumors or news about %s.", coinName)
	}

	return Success("Found some chatter. Here's a top tweet: %s", texts[0])
}

func buildCoinQuery(coinName, coinSymbol string) string {
	if coinSymbol != "" {
		return fmt.Sprintf("%q OR %q", coinName, coinSymbol)
	}
	return fmt.Sprintf("%q", coinName)
}

type tweetSearchResponse struct {
	Data []struct {
		Text string `json:"text"`
	} `json:"data"`
}

func (c *TwitterClient) searchRecent(ctx context.Context, query string, maxResults int) ([]string, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("max_results", fmt.Sprintf("%d", maxResults))
	params.Set("tweet.fields", "text")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Twitter API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var search tweetSearchResponse
	if err := json.Unmarshal(body, &search); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	texts := make([]string, 0, len(search.Data))
	for _, tweet := range search.Data {
		texts = append(texts, tweet.Text)
	}
	return texts, nil
}
