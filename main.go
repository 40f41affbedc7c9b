package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"travel-bot/bot"
	"travel-bot/config"
	"travel-bot/handlers"
	"travel-bot/services"
	"travel-bot/store"
	"travel-bot/workflows"

	"github.com/dbos-inc/dbos-transact-golang/dbos"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL for app data
	st, err := store.Open(ctx, cfg.DatabaseURL, logger.Named("store"))
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer st.Close()
	if err := st.Migrate(ctx); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}
	logger.Info("connected to PostgreSQL database")

	// Initialize external services
	completer := services.NewOpenAIService(services.OpenAIConfig{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
	}, logger.Named("openai"))
	line, err := services.NewLineService(cfg.LineChannelAccessToken, logger.Named("line"))
	if err != nil {
		logger.Fatal("failed to create messaging client", zap.Error(err))
	}

	// Conversation logic
	gateway := bot.NewGateway(st, completer, logger.Named("gateway"))
	router := bot.NewRouter(st, gateway, logger.Named("router"))
	processor := workflows.NewProcessor(router, line, logger.Named("events"))

	var (
		dispatcher workflows.Dispatcher
		async      *workflows.AsyncDispatcher
	)
	if cfg.DurableEvents {
		// Initialize DBOS context for durable workflows
		dbosCtx, err := dbos.NewDBOSContext(context.Background(), dbos.Config{
			DatabaseURL: cfg.DatabaseURL,
			AppName:     cfg.AppName,
		})
		if err != nil {
			logger.Fatal("failed to initialize DBOS", zap.Error(err))
		}

		durable := workflows.NewDurableDispatcher(dbosCtx, processor, logger.Named("events"))
		// Register workflows with DBOS (MUST be before Launch)
		durable.Register()

		// Launch DBOS (starts workflow recovery)
		if err := dbos.Launch(dbosCtx); err != nil {
			logger.Fatal("failed to launch DBOS", zap.Error(err))
		}
		defer dbos.Shutdown(dbosCtx, 5*time.Second)
		logger.Info("DBOS initialized - durable event processing enabled")
		dispatcher = durable
	} else {
		async = workflows.NewAsyncDispatcher(processor)
		dispatcher = async
	}

	// Initialize handlers
	webhookHandler := handlers.NewWebhookHandler(services.NewSignatureVerifier(cfg.LineChannelSecret), dispatcher, logger.Named("webhook"))
	adminHandler := handlers.NewAdminHandler(st, logger.Named("admin"))
	richMenuHandler := handlers.NewRichMenuHandler(line, logger.Named("richmenu"))

	// Setup Gin router
	engine := gin.New()
	engine.Use(gin.Recovery(), handlers.RequestLogger(logger.Named("http")))

	api := engine.Group("/api")
	{
		api.POST("/webhook", webhookHandler.Receive)
		api.GET("/webhook", webhookHandler.Status)
		api.HEAD("/webhook", webhookHandler.Status)

		api.POST("/rich-menu", richMenuHandler.Create)
		api.GET("/rich-menu", richMenuHandler.List)
		api.DELETE("/rich-menu", richMenuHandler.DeleteAll)

		admin := api.Group("/admin")
		admin.GET("/conversations", adminHandler.ListConversations)
		admin.GET("/messages", adminHandler.GetMessages)
		admin.DELETE("/conversations/:id/messages", adminHandler.ClearMessages)
		admin.DELETE("/conversations/:id/mode", adminHandler.ResetMode)
		admin.DELETE("/users/:userId/conversations", adminHandler.ClearUser)
		admin.POST("/users/:userId/conversations", adminHandler.NewConversation)
		admin.GET("/destinations/popular", adminHandler.PopularDestinations)
	}

	engine.GET("/health", handlers.Health(st.DB(), cfg.DurableEvents))

	// Start server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("starting server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if async != nil {
		async.Wait()
	}
}

// newLogger builds a production logger at the given level, falling back to
// info for unknown levels.
func newLogger(level string) *zap.Logger {
	zcfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		zcfg.Level = lvl
	}
	logger, err := zcfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
