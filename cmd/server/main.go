// Package main initializes and starts the KnowDistrict HTTP server,
// setting up configuration, logging, storage, repositories, services,
// and handlers.
package main

import (
	"cmp"
	"fmt"
	"time"

	nethttp "net/http"

	"github.com/knowdistrict/knowdistrict/internal/ai"
	"github.com/knowdistrict/knowdistrict/internal/config"
	"github.com/knowdistrict/knowdistrict/internal/db"
	"github.com/knowdistrict/knowdistrict/internal/logger"
	"github.com/knowdistrict/knowdistrict/internal/repository"
	"github.com/knowdistrict/knowdistrict/internal/search"
	"github.com/knowdistrict/knowdistrict/internal/server/handler/http"
	"github.com/knowdistrict/knowdistrict/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()
	addr := options.Port

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init("Info"); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	if options.JWTSecret == "" {
		zapLogger.Fatal("jwt secret is required")
	}

	// Initialize storage: PostgreSQL when a DSN is configured, the
	// in-memory store otherwise.
	var (
		userRepo     service.UserRepository
		categoryRepo service.CategoryRepository
		documentRepo service.DocumentRepository
		corpus       search.Corpus
	)
	if options.DatabaseDSN == "" {
		store := repository.NewMemoryStore()
		userRepo, categoryRepo, documentRepo, corpus = store, store, store, store
		zapLogger.Info("no database configured, using in-memory store")
	} else {
		postgresDB, err := db.InitPostgres(options.DatabaseDSN)
		if err != nil {
			zapLogger.Fatal("cannot init database", zap.Error(err))
		}
		docRepo := repository.NewPostgresDocumentRepository(postgresDB)
		userRepo = repository.NewPostgresUserRepository(postgresDB)
		categoryRepo = repository.NewPostgresCategoryRepository(postgresDB)
		documentRepo, corpus = docRepo, docRepo
	}

	// Initialize the tiered search engine over the corpus.
	engine := search.NewEngine(corpus, zapLogger)

	// Initialize business-logic services.
	userService := service.NewUserService(userRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	documentService := service.NewDocumentService(documentRepo, engine)
	provider := ai.NewClient(options.OpenAIKey, options.OpenAIModel)
	aiService := service.NewAIService(provider, engine)

	// Create HTTP handlers.
	authHandler := &http.AuthHandler{
		Users:     userService,
		JWTSecret: options.JWTSecret,
		TokenTTL:  time.Duration(options.TokenTTLMinutes) * time.Minute,
	}
	userHandler := &http.UserHandler{Users: userService}
	categoryHandler := &http.CategoryHandler{Categories: categoryService}
	documentHandler := &http.DocumentHandler{Documents: documentService}
	aiHandler := &http.AIHandler{AI: aiService}

	// Build the router with middleware and routes.
	router := http.NewRouter(
		authHandler, userHandler, categoryHandler, documentHandler, aiHandler,
		options.JWTSecret, zapLogger,
	)

	// Create and start the HTTP server.
	server := &nethttp.Server{
		Addr:    addr,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
