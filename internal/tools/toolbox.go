package tools

import (
	"context"
	"fmt"

	"github.com/chongdashu/crypto-scout/pkg/log"
)

// ToolName identifies one of the tools exposed to the model. The set is a
// closed enumeration: Dispatch rejects anything outside it.
type ToolName string

const (
	ToolSearchCoinID      ToolName = "search_coin_id"
	ToolCoinDetails       ToolName = "get_coin_details"
	ToolCommunityInsights ToolName = "get_crypto_community_insights"
	ToolTokenFlow         ToolName = "get_token_smart_money_flow"
	ToolNativeAssetFlow   ToolName = "get_native_asset_smart_money_flow"
)

// ToolSpec is the name and one-line doc handed to the model when composing
// the prompt
type ToolSpec struct {
	Name ToolName
	Doc  string
}

// Toolbox holds the concrete tool clients and interprets tool directives.
// There is no name->function map on purpose: dispatch is an explicit switch
// over the closed ToolName set.
type Toolbox struct {
	coins   *CoinGeckoClient
	twitter *TwitterClient
	nansen  *NansenClient
}

func NewToolbox(coins *CoinGeckoClient, twitter *TwitterClient, nansen *NansenClient) *Toolbox {
	return &Toolbox{
		coins:   coins,
		twitter: twitter,
		nansen:  nansen,
	}
}

// Specs returns the tool list exposed to the model
func (tb *Toolbox) Specs() []ToolSpec {
	return []ToolSpec{
		{ToolSearchCoinID, "Searches CoinGecko for a coin ID, with a fallback for known symbol discrepancies. Args: query."},
		{ToolCoinDetails, "Fetches market data for a coin and determines whether it is a native asset or a token with a contract address on a supported chain. Args: coin_id."},
		{ToolCommunityInsights, "Provides a summary of community sentiment on Twitter. Args: coin_name, coin_symbol (optional)."},
		{ToolTokenFlow, "Fetches smart money net flows for a token. Args: chain, token_address."},
		{ToolNativeAssetFlow, "Fetches smart money net flows for a chain's native asset. Args: chain."},
	}
}

// Dispatch executes the named tool with the given arguments. An unknown name
// returns a non-nil error: that is the one hard stop in the loop, everything
// else is folded into the ToolResult.
func (tb *Toolbox) Dispatch(ctx context.Context, name ToolName, args map[string]interface{}) (ToolResult, error) {
	switch name {
	case ToolSearchCoinID:
		return tb.searchCoinID(ctx, strArg(args, "query")), nil
	case ToolCoinDetails:
		return tb.coins.CoinDetails(ctx, strArg(args, "coin_id")), nil
	case ToolCommunityInsights:
		return tb.twitter.CommunityInsights(ctx, strArg(args, "coin_name"), strArg(args, "coin_symbol")), nil
	case ToolTokenFlow:
		return tb.nansen.TokenFlow(ctx, strArg(args, "chain"), strArg(args, "token_address")), nil
	case ToolNativeAssetFlow:
		return tb.nansen.NativeAssetFlow(ctx, strArg(args, "chain")), nil
	default:
		return ToolResult{}, fmt.Errorf("unknown tool: %s", name)
	}
}

// searchCoinID adapts the coin lookup to the uniform result shape. A lookup
// that found nothing and a lookup that failed in transport both read as
// no_data to the model; the transport failure is logged for operators.
func (tb *Toolbox) searchCoinID(ctx context.Context, query string) ToolResult {
	if query == "" {
		return Errorf("Missing search query.")
	}
	id, err := tb.coins.SearchCoinID(ctx, query)
	if err != nil {
		log.Warn("coin search for %q failed: %v", query, err)
	}
	if id == "" {
		return NoData("No CoinGecko match found for '%s'.", query)
	}
	res := Success("%s", id)
	res.CoinID = id
	return res
}

func strArg(args map[string]interface{}, key string) string {
	if args == nil {
		return ""
	}
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}
