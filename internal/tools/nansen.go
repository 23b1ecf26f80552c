package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const nansenFlowURL = "https://api.nansen.ai/api/beta/tgm/flow-intelligence"

// nativeAssetAddresses maps a chain to the canonical wrapped-native-asset
// contract Nansen tracks for it
var nativeAssetAddresses = map[string]string{
	"solana":   "So11111111111111111111111111111111111111112",
	"ethereum": "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2",
}

var flowTimeframes = []struct {
	label     string
	timeframe string
}{
	{"24H", "1d"},
	{"7D", "7d"},
	{"30D", "30d"},
}

// NansenClient wraps the flow-intelligence endpoint. Calls are paced at one
// per 500ms to stay under the provider's rate limit.
type NansenClient struct {
	apiKey     string
	flowURL    string
	limiter    *rate.Limiter
	httpClient *http.Client
}

// NewNansenClient creates a Nansen client. flowURL is overridable for tests;
// empty selects the real endpoint.
func NewNansenClient(apiKey, flowURL string) *NansenClient {
	if flowURL == "" {
		flowURL = nansenFlowURL
	}
	return &NansenClient{
		apiKey:  apiKey,
		flowURL: flowURL,
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SmartMoneyFlows fetches 24H/7D/30D smart money net flows for a token and
// formats them into one summary sentence. A failure in one timeframe
// degrades to an inline "N/A (error: ...)" fragment; the other timeframes
// still run.
func (c *NansenClient) SmartMoneyFlows(ctx context.Context, chain, tokenAddress string) ToolResult {
	if c.apiKey == "" {
		return Errorf("Nansen API key not set.")
	}

	flows := make(map[string]string, len(flowTimeframes))
	for _, tf := range flowTimeframes {
		if err := c.limiter.Wait(ctx); err != nil {
			flows[tf.label] = fmt.Sprintf("N/A (error: %v)", err)
			continue
		}
		netflow, err := c.fetchFlow(ctx, chain, tokenAddress, tf.timeframe)
		switch {
		case err != nil:
			flows[tf.label] = fmt.Sprintf("N/A (error: %v)", err)
		case netflow == nil:
			flows[tf.label] = "N/A"
		default:
			flows[tf.label] = formatFlow(*netflow)
		}
	}

	return Success("Smart money flows: 24H: %s, 7D: %s, 30D: %s.",
		flows["24H"], flows["7D"], flows["30D"])
}

// TokenFlow is the caller-supplied-address variant
func (c *NansenClient) TokenFlow(ctx context.Context, chain, tokenAddress string) ToolResult {
	if chain == "" || tokenAddress == "" {
		return Errorf("Missing chain or token address.")
	}
	return c.SmartMoneyFlows(ctx, chain, tokenAddress)
}

// NativeAssetFlow resolves a chain name to its canonical wrapped-native-asset
// address and fetches flows for that
func (c *NansenClient) NativeAssetFlow(ctx context.Context, chain string) ToolResult {
	if chain == "" {
		return Errorf("Missing chain name.")
	}
	tokenAddress, ok := nativeAssetAddresses[strings.ToLower(chain)]
	if !ok {
		return Errorf("Smart money flow not supported for native asset on '%s'.", chain)
	}
	return c.SmartMoneyFlows(ctx, chain, tokenAddress)
}

type flowRequest struct {
	Parameters flowParameters `json:"parameters"`
}

type flowParameters struct {
	Chain        string `json:"chain"`
	TokenAddress string `json:"tokenAddress"`
	Timeframe    string `json:"timeframe"`
}

// fetchFlow returns the smart trader net flow in USD for one timeframe, or
// nil when the endpoint had no data for it
func (c *NansenClient) fetchFlow(ctx context.Context, chain, tokenAddress, timeframe string) (*float64, error) {
	payload := flowRequest{
		Parameters: flowParameters{
			Chain:        strings.ToLower(chain),
			TokenAddress: tokenAddress,
			Timeframe:    timeframe,
		},
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.flowURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apiKey", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

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
		return nil, fmt.Errorf("Nansen API error (status %d)", resp.StatusCode)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	netflow := toFloat(rows[0]["smartTraderFlow"])
	return &netflow, nil
}

// toFloat tolerates the endpoint returning flows as numbers or strings;
// anything unparsable counts as zero
func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// formatFlow renders a USD amount at human scale: $X.XXM, $X.XXK or $X.XX
func formatFlow(netflow float64) string {
	switch {
	case math.Abs(netflow) >= 1_000_000:
		return fmt.Sprintf("$%.2fM", netflow/1_000_000)
	case math.Abs(netflow) >= 1_000:
		return fmt.Sprintf("$%.2fK", netflow/1_000)
	default:
		return fmt.Sprintf("$%.2f", netflow)
	}
}
