package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/smaro-ai/agent-backend/internal/clients/pinecone"
	"github.com/smaro-ai/agent-backend/internal/clients/redis"
	"github.com/smaro-ai/agent-backend/internal/db"
	"github.com/smaro-ai/agent-backend/internal/handlers"
	"github.com/smaro-ai/agent-backend/internal/history"
	"github.com/smaro-ai/agent-backend/internal/logger"
	"github.com/smaro-ai/agent-backend/internal/observability"
	"github.com/smaro-ai/agent-backend/internal/resolver"
	"github.com/smaro-ai/agent-backend/internal/server"
	"github.com/smaro-ai/agent-backend/internal/services"
	"github.com/smaro-ai/agent-backend/internal/tools"
	"github.com/smaro-ai/agent-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Tracing
	shutdownOTel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "smaro-agent",
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "dev", log),
	})
	if shutdownOTel != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownOTel(ctx)
		}()
	}

	// Clients
	log.Info("Setting up clients from main...")
	aiClient, err := services.NewAIClient(log)
	if err != nil {
		log.Error("Could not init AIClient", "error", err)
		os.Exit(1)
	}
	vecClient, err := pinecone.New(log, pinecone.Config{
		APIKey: os.Getenv("PINECONE_API_KEY"),
	})
	if err != nil {
		log.Error("Could not init PineconeClient", "error", err)
		os.Exit(1)
	}
	var answerCache redis.AnswerCache
	if cache, err := redis.NewAnswerCache(log); err != nil {
		log.Warn("Answer cache disabled", "error", err)
	} else {
		answerCache = cache
		defer answerCache.Close()
	}

	// History
	log.Info("Setting up history stores from main...")
	flatLogPath := utils.GetEnv("CHAT_LOG_PATH", "data.csv", log)
	flatLog := history.NewFlatLog(log, flatLogPath)
	relational := history.NewRelational(log, db.NewPostgresOpener(log))

	// Services
	log.Info("Setting up services from main...")
	knowledge, err := services.NewKnowledgeService(log, aiClient, vecClient, answerCache)
	if err != nil {
		log.Error("Could not init KnowledgeService", "error", err)
		os.Exit(1)
	}
	catalog := tools.NewCatalog()
	agent := services.NewAgentService(log, aiClient, catalog, knowledge)
	converseSvc := services.NewConverseService(log, agent, resolver.New(catalog), relational, flatLog)

	// Handlers
	log.Info("Setting up handlers from main...")
	converseHandler := handlers.NewConverseHandler(log, converseSvc)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		ConverseHandler:      converseHandler,
		CORSAllowCredentials: utils.GetEnvAsBool("CORS_ALLOW_CREDENTIALS", false, log),
	})

	port := utils.GetEnv("PORT", "8009", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
