package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/smaro-ai/agent-backend/internal/handlers"
)

type RouterConfig struct {
	ConverseHandler      *handlers.ConverseHandler
	CORSAllowCredentials bool
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: cfg.CORSAllowCredentials,
	}))

	router.Use(otelgin.Middleware("smaro-agent"))

	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/taskproof/converse_faq", cfg.ConverseHandler.ConverseFAQ)

	return router
}
