package router

import (
	"context"
	"fmt"

	"github.com/chongdashu/crypto-scout/internal/agent"
	"github.com/chongdashu/crypto-scout/internal/tools"
	"github.com/chongdashu/crypto-scout/pkg/log"
)

// Fallback handles messages the heuristic cannot classify; in production it
// is the model-directed orchestrator
type Fallback interface {
	Process(ctx context.Context, message string) (agent.Result, *agent.Transcript)
}

// Router is the deterministic fast path: it classifies the message with the
// regex heuristic and dispatches straight to the matching tools, bypassing
// the model entirely. Unknown intents fall back to the orchestrator.
type Router struct {
	coins    *tools.CoinGeckoClient
	twitter  *tools.TwitterClient
	nansen   *tools.NansenClient
	reddit   *tools.RedditClient
	fallback Fallback
}

func NewRouter(coins *tools.CoinGeckoClient, twitter *tools.TwitterClient, nansen *tools.NansenClient, reddit *tools.RedditClient, fallback Fallback) *Router {
	return &Router{
		coins:    coins,
		twitter:  twitter,
		nansen:   nansen,
		reddit:   reddit,
		fallback: fallback,
	}
}

// Answer produces the reply for one user message. The returned transcript is
// non-nil only when the orchestrator ran and records its tool exchanges.
func (r *Router) Answer(ctx context.Context, message string) (agent.Result, *agent.Transcript) {
	intent, coin := DetectIntent(message)
	log.Debug("detected intent=%s coin=%q", intent, coin)

	if intent == IntentUnknown {
		return r.fallback.Process(ctx, message)
	}

	if intent == IntentReddit {
		return r.redditAnswer(ctx, coin), nil
	}

	if coin == "" {
		return agent.Result{
			Message: "Sorry, I couldn't figure out which coin you're asking about. Please specify the coin name or symbol.",
			Status:  agent.StatusSuccess,
			Data:    map[string]interface{}{"intent": string(intent)},
		}, nil
	}

	coinID, err := r.coins.SearchCoinID(ctx, coin)
	if err != nil {
		log.Warn("coin search for %q failed: %v", coin, err)
	}
	if coinID == "" {
		return agent.Result{
			Message: fmt.Sprintf("Sorry, I couldn't find '%s' on CoinGecko. Please check the name or symbol.", coin),
			Status:  agent.StatusSuccess,
			Data:    map[string]interface{}{"intent": string(intent)},
		}, nil
	}

	var response string
	switch intent {
	case IntentPrice:
		response = r.coins.CoinDetails(ctx, coinID).Result
	case IntentSentiment:
		response = r.twitter.CommunityInsights(ctx, coin, "").Result
	case IntentRumor:
		response = r.twitter.RumorsAndNews(ctx, coin, "").Result
	case IntentSmartMoney:
		response = r.smartMoney(ctx, coinID).Result
	case IntentFullReport:
		response = r.fullReport(ctx, coinID, coin)
	}

	return agent.Result{
		Message: response,
		Status:  agent.StatusSuccess,
		Data: map[string]interface{}{
			"intent":  string(intent),
			"coin_id": coinID,
		},
	}, nil
}

// smartMoney routes a flow request by the coin's classification: native
// assets by chain, tokens by chain plus contract address
func (r *Router) smartMoney(ctx context.Context, coinID string) tools.ToolResult {
	details := r.coins.CoinDetails(ctx, coinID)
	if details.Status != tools.StatusSuccess {
		return details
	}
	if details.IsNativeAsset {
		return r.nansen.NativeAssetFlow(ctx, details.Chain)
	}
	return r.nansen.TokenFlow(ctx, details.Chain, details.ContractAddress)
}

// fullReport runs all four data sources and concatenates their sections.
// Each section carries its own result or error text; one failing source
// never suppresses the others.
func (r *Router) fullReport(ctx context.Context, coinID, coin string) string {
	details := r.coins.CoinDetails(ctx, coinID)
	insights := r.twitter.CommunityInsights(ctx, coin, "")
	rumors := r.twitter.RumorsAndNews(ctx, coin, "")

	var flow tools.ToolResult
	if details.Status == tools.StatusSuccess {
		if details.IsNativeAsset {
			flow = r.nansen.NativeAssetFlow(ctx, details.Chain)
		} else {
			flow = r.nansen.TokenFlow(ctx, details.Chain, details.ContractAddress)
		}
	} else {
		flow = details
	}

	return fmt.Sprintf(
		"**Market Data:**\n%s\n\n**Community Sentiment:**\n%s\n\n**Rumors/News:**\n%s\n\n**Smart Money Flow:**\n%s",
		details.Result, insights.Result, rumors.Result, flow.Result)
}

func (r *Router) redditAnswer(ctx context.Context, subreddit string) agent.Result {
	if subreddit == "" {
		return agent.Result{
			Message: "Sorry, I couldn't figure out which subreddit you mean. Try something like 'hot posts in r/CryptoCurrency'.",
			Status:  agent.StatusSuccess,
			Data:    map[string]interface{}{"intent": string(IntentReddit)},
		}
	}
	result := r.reddit.HotPosts(ctx, subreddit, 0)
	return agent.Result{
		Message: result.Result,
		Status:  agent.StatusSuccess,
		Data: map[string]interface{}{
			"intent":    string(IntentReddit),
			"subreddit": subreddit,
		},
	}
}
