package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/chongdashu/crypto-scout/internal/agent"
	"github.com/chongdashu/crypto-scout/internal/config"
	"github.com/chongdashu/crypto-scout/internal/httpapi"
	"github.com/chongdashu/crypto-scout/internal/llm"
	"github.com/chongdashu/crypto-scout/internal/router"
	"github.com/chongdashu/crypto-scout/internal/session"
	"github.com/chongdashu/crypto-scout/internal/tools"
	"github.com/chongdashu/crypto-scout/pkg/log"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly
	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatal("failed to load configuration: %v", err)
	}

	llmClient, err := llm.NewClient(&llm.Config{
		APIKey:      cfg.LLM.APIKey,
		APIURL:      cfg.LLM.APIURL,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	})
	if err != nil {
		log.Fatal("failed to create LLM client: %v", err)
	}

	coins := tools.NewCoinGeckoClient(cfg.CoinGecko.APIKey, "")
	twitter := tools.NewTwitterClient(cfg.Twitter.BearerToken, "")
	nansen := tools.NewNansenClient(cfg.Nansen.APIKey, "")
	reddit := tools.NewRedditClient(cfg.Reddit.ClientID, cfg.Reddit.ClientSecret, cfg.Reddit.UserAgent, "", "")

	toolbox := tools.NewToolbox(coins, twitter, nansen)
	orchestrator := agent.NewOrchestrator(llmClient, toolbox, cfg.Agent.MaxIterations)
	answerer := router.NewRouter(coins, twitter, nansen, reddit, orchestrator)

	sessions := session.NewStore(time.Duration(cfg.Server.SessionTTLMinutes) * time.Minute)

	pruner := cron.New()
	if _, err := pruner.AddFunc("@every 10m", func() {
		if n := sessions.Prune(); n > 0 {
			log.Info("pruned %d idle sessions", n)
		}
	}); err != nil {
		log.Fatal("failed to schedule session pruning: %v", err)
	}
	pruner.Start()
	defer pruner.Stop()

	server := httpapi.NewServer(answerer, sessions, httpapi.AgentMetadata{
		Name:        cfg.Server.Name,
		Description: cfg.Server.Description,
		Endpoints:   []string{"run"},
		Version:     cfg.Server.Version,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("%s listening on %s", cfg.Server.Name, cfg.Server.Addr)
		if err := server.ListenAndServe(cfg.Server.Addr); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server error: %v", err)
	}
	log.Info("shutdown complete")
}
