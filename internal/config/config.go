package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration.
// Built once at process start and passed by reference into each component's
// constructor; nothing reads the environment after startup.
//
// Environment Variables:
// LLM Configuration:
// - LLM_API_KEY: API key for the LLM provider (required)
// - LLM_API_URL: OpenAI-compatible API endpoint (default: https://openrouter.ai/api/v1)
// - LLM_MODEL: Model name to use (default: google/gemini-2.5-flash)
// - LLM_MAX_TOKENS: Maximum tokens for responses (default: 8000)
// - LLM_TEMPERATURE: Temperature for responses (default: 0.7)
// - LLM_TIMEOUT: Request timeout in seconds (default: 30)
//
// Data API Configuration (all optional; a missing credential degrades that
// one tool to an error result at call time, it never fails startup):
// - COINGECKO_API_KEY: CoinGecko pro key (public API is used when unset)
// - TWITTER_BEARER_TOKEN: Twitter/X recent-search bearer token
// - REDDIT_CLIENT_ID / REDDIT_CLIENT_SECRET / REDDIT_USER_AGENT
// - NANSEN_API_KEY: Nansen flow-intelligence key
//
// Agent / Server Configuration:
// - AGENT_MAX_ITERATIONS: Tool-call budget per request (default: 5)
// - SERVER_ADDR: HTTP listen address (default: :8000)
// - AGENT_NAME / AGENT_DESCRIPTION / AGENT_VERSION: capability metadata
// - SESSION_TTL_MINUTES: idle minutes before a session is pruned (default: 60)
type Config struct {
	LLM       LLMConfig
	CoinGecko CoinGeckoConfig
	Twitter   TwitterConfig
	Reddit    RedditConfig
	Nansen    NansenConfig
	Agent     AgentConfig
	Server    ServerConfig
}

// LLMConfig holds the configuration for the LLM client.
// Works with any OpenAI-compatible provider (OpenRouter, OpenAI, etc.).
type LLMConfig struct {
	APIKey      string  `env:"LLM_API_KEY"`
	APIURL      string  `env:"LLM_API_URL" envDefault:"https://openrouter.ai/api/v1"`
	Model       string  `env:"LLM_MODEL" envDefault:"google/gemini-2.5-flash"`
	MaxTokens   int     `env:"LLM_MAX_TOKENS" envDefault:"8000"`
	Temperature float64 `env:"LLM_TEMPERATURE" envDefault:"0.7"`
	Timeout     int     `env:"LLM_TIMEOUT" envDefault:"30"`
}

type CoinGeckoConfig struct {
	APIKey string `env:"COINGECKO_API_KEY"`
}

type TwitterConfig struct {
	BearerToken string `env:"TWITTER_BEARER_TOKEN"`
}

type RedditConfig struct {
	ClientID     string `env:"REDDIT_CLIENT_ID"`
	ClientSecret string `env:"REDDIT_CLIENT_SECRET"`
	UserAgent    string `env:"REDDIT_USER_AGENT"`
}

type NansenConfig struct {
	APIKey string `env:"NANSEN_API_KEY"`
}

// AgentConfig holds the configuration for the orchestration loop
type AgentConfig struct {
	MaxIterations int `env:"AGENT_MAX_ITERATIONS" envDefault:"5"`
}

// ServerConfig holds the HTTP front door configuration and the static
// capability metadata served at /.well-known/agent.json
type ServerConfig struct {
	Addr              string `env:"SERVER_ADDR" envDefault:":8000"`
	Name              string `env:"AGENT_NAME" envDefault:"reddit_scout"`
	Description       string `env:"AGENT_DESCRIPTION" envDefault:"A crypto research assistant that combines market data with social media analysis and smart money insights."`
	Version           string `env:"AGENT_VERSION" envDefault:"1.0.0"`
	SessionTTLMinutes int    `env:"SESSION_TTL_MINUTES" envDefault:"60"`
}

// NewFromEnv creates a new Config instance from environment variables
func NewFromEnv() (*Config, error) {
	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// validate checks the configuration that must be present at startup.
// Data API credentials are deliberately not checked here; each tool checks
// its own credential at call time and degrades to an error result.
func (c *Config) validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required")
	}
	if c.Agent.MaxIterations <= 0 {
		return fmt.Errorf("AGENT_MAX_ITERATIONS must be positive")
	}
	return nil
}
