package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	coingeckoPublicURL = "https://api.coingecko.com/api/v3"
	coingeckoProURL    = "https://pro-api.coingecko.com/api/v3"
)

// coinAliases overrides the search for symbols CoinGecko resolves badly
var coinAliases = map[string]string{
	"ket": "rocket-pool-eth",
}

// nativeAssets are base-chain currencies with no contract address
var nativeAssets = map[string]bool{
	"solana":      true,
	"ethereum":    true,
	"binancecoin": true,
	"avalanche-2": true,
}

// supportedChains is the token classification priority order; the first
// platform entry matching one of these wins
var supportedChains = []string{
	"solana", "ethereum", "arbitrum", "polygon", "avalanche", "base", "bnb",
}

// CoinGeckoClient wraps the CoinGecko REST API for coin lookup and market
// snapshots
type CoinGeckoClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewCoinGeckoClient creates a CoinGecko client. An empty baseURL selects the
// pro host when an API key is configured and the public host otherwise.
func NewCoinGeckoClient(apiKey, baseURL string) *CoinGeckoClient {
	if baseURL == "" {
		if apiKey != "" {
			baseURL = coingeckoProURL
		} else {
			baseURL = coingeckoPublicURL
		}
	}
	return &CoinGeckoClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type coinSearchResponse struct {
	Coins []struct {
		ID     string `json:"id"`
		Symbol string `json:"symbol"`
		Name   string `json:"name"`
	} `json:"coins"`
}

// SearchCoinID resolves a free-text query to a CoinGecko coin id. The alias
// table is consulted first and short-circuits without any network call.
// A ("", nil) return means no match; a ("", err) return means the lookup
// itself failed. User-facing callers treat both as "not found".
func (c *CoinGeckoClient) SearchCoinID(ctx context.Context, query string) (string, error) {
	if alias, ok := coinAliases[strings.ToLower(query)]; ok {
		return alias, nil
	}

	reqURL := fmt.Sprintf("%s/search?query=%s", c.baseURL, url.QueryEscape(query))
	body, err := c.get(ctx, reqURL)
	if err != nil {
		return "", err
	}

	var search coinSearchResponse
	if err := json.Unmarshal(body, &search); err != nil {
		return "", fmt.Errorf("failed to parse search response: %w", err)
	}

	if len(search.Coins) == 0 {
		return "", nil
	}

	// Prefer an exact case-insensitive symbol match over the first result
	queryLower := strings.ToLower(query)
	for _, coin := range search.Coins {
		if strings.ToLower(coin.Symbol) == queryLower {
			return coin.ID, nil
		}
	}

	return search.Coins[0].ID, nil
}

type coinDetailsResponse struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	AssetPlatformID string            `json:"asset_platform_id"`
	Platforms       map[string]string `json:"platforms"`
	MarketData      struct {
		CurrentPrice map[string]float64 `json:"current_price"`
		MarketCap    map[string]float64 `json:"market_cap"`
		TotalVolume  map[string]float64 `json:"total_volume"`
		High24h      map[string]float64 `json:"high_24h"`
		Low24h       map[string]float64 `json:"low_24h"`
	} `json:"market_data"`
}

// CoinDetails fetches the market snapshot for a coin id and classifies the
// asset as native or token. Every failure mode is mapped to an error-status
// result; this never returns an error to the caller.
func (c *CoinGeckoClient) CoinDetails(ctx context.Context, coinID string) ToolResult {
	if coinID == "" {
		return Errorf("Lame. You forgot the coin_id. Can't do much without that.")
	}

	body, err := c.get(ctx, fmt.Sprintf("%s/coins/%s", c.baseURL, url.PathEscape(coinID)))
	if err != nil {
		var statusErr *httpStatusError
		switch {
		case errors.As(err, &statusErr):
			return Errorf("CoinGecko API error: %d", statusErr.code)
		case isTimeout(err):
			return Errorf("CoinGecko API timed out. Please try again later.")
		default:
			return Errorf("Network error: %v", err)
		}
	}

	var data coinDetailsResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return Errorf("Failed to parse CoinGecko response: %v", err)
	}

	isNative := data.AssetPlatformID == "" && nativeAssets[data.ID]

	var foundChain, contractAddress string
	if isNative {
		foundChain = data.ID
	} else {
		for _, chain := range supportedChains {
			if addr := data.Platforms[chain]; addr != "" {
				foundChain = chain
				contractAddress = addr
				break
			}
		}
	}

	name := data.Name
	if name == "" {
		name = "this coin"
	}
	price := data.MarketData.CurrentPrice["usd"]
	marketCap := data.MarketData.MarketCap["usd"]

	summary := fmt.Sprintf(
		"Okay, here's the tea on %s. Right now, it's trading at $%s. Total market cap is a hefty $%s.",
		name,
		humanize.FormatFloat("#,###.##", price),
		humanize.FormatFloat("#,###.", marketCap),
	)

	return ToolResult{
		Status:          StatusSuccess,
		Result:          summary,
		CoinID:          coinID,
		IsNativeAsset:   isNative,
		Chain:           foundChain,
		ContractAddress: contractAddress,
	}
}

type httpStatusError struct {
	code int
	body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.code, e.body)
}

func (c *CoinGeckoClient) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("x-cg-pro-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &httpStatusError{code: resp.StatusCode, body: strings.TrimSpace(string(body))}
	}

	return body, nil
}

func isTimeout(err error) bool {
	if os.IsTimeout(err) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
