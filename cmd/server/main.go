package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"chatlearn/internal/api"
	"chatlearn/internal/cache"
	"chatlearn/internal/config"
	"chatlearn/internal/dialog"
	"chatlearn/internal/llm"
	redisdb "chatlearn/internal/redis"
	"chatlearn/internal/store"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	dbs := dialog.Databases{
		Topics:        cfg.Databases.Topics,
		UserProfiles:  cfg.Databases.UserProfiles,
		SessionEvents: cfg.Databases.SessionEvents,
		Feedback:      cfg.Databases.Feedback,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	docStore, err := store.NewMongo(ctx, store.MongoConfig{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	}, dbs.Topics, dbs.UserProfiles, dbs.SessionEvents, dbs.Feedback)
	if err != nil {
		logger.Fatal("mongo init failed", zap.Error(err))
	}

	opts := []dialog.Option{}
	if cfg.OpenAI.APIKey != "" {
		opts = append(opts, dialog.WithCompleter(llm.NewClient(llm.Config{
			APIURL:       cfg.OpenAI.APIURL,
			APIKey:       cfg.OpenAI.APIKey,
			Organization: cfg.OpenAI.Organization,
			Model:        cfg.OpenAI.Model,
			Prompt:       cfg.OpenAI.Prompt,
			MaxTokens:    cfg.OpenAI.MaxTokens,
		})))
	} else {
		logger.Warn("OPENAI_API_KEY not set, consultOpenAI disabled")
	}
	if cfg.Redis.Addr != "" {
		rdb := redisdb.NewClient(cfg)
		opts = append(opts, dialog.WithSummaryCache(cache.NewSummary(rdb, cfg.SummaryTTL(), logger)))
	} else {
		logger.Warn("redis not configured, summary caching disabled")
	}

	reg := dialog.NewRegistry(cfg.Dialog.DefaultService)
	for _, name := range cfg.Dialog.Services {
		reg.Register(name, dialog.NewEngine(docStore, dbs, logger.With(zap.String("service", name)), opts...))
	}

	router := api.SetupRouter(cfg, reg, logger)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("listening", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
