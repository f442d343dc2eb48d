package main

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/yumyai/protclass/internal/util"
	"github.com/yumyai/protclass/logger"
	"github.com/yumyai/protclass/pkg/db"
	"github.com/yumyai/protclass/pkg/embedding"
	"github.com/yumyai/protclass/pkg/handler"
	"github.com/yumyai/protclass/pkg/middle"
	"github.com/yumyai/protclass/pkg/model"
	"github.com/yumyai/protclass/pkg/uniprot"
	"go.uber.org/zap"
)

const VERSION = "0.1.0"

func main() {

	// Try load env before the logger so LOG_LEVEL from .env applies.
	dotenvErr := godotenv.Load()

	// Establish logger
	if err := logger.InitLogger(logger.ParseLevel(util.GetEnv("LOG_LEVEL", "info"))); err != nil {
		panic(err)
	}
	defer logger.Sync() // Make sure that the buffered is flushed.

	if dotenvErr != nil {
		logger.Warn("No .env found, using local environment")
	}

	addr := util.GetEnv("PROTCLASS_ADDR", "0.0.0.0:8080")
	dataDir := util.GetEnv("PROTCLASS_DATA", "./data")
	timeout := util.GetEnvDuration("HTTP_TIMEOUT", 30*time.Second)
	workers := util.GetEnvInt("BATCH_WORKERS", 4)

	if err := util.EnsureDir(dataDir); err != nil {
		logger.Fatal("Cannot create data directory", zap.String("dir", dataDir), zap.Error(err))
	}
	dbPath := filepath.Join(dataDir, "results.db")

	store, err := db.NewResultStore(dbPath)
	if err != nil {
		logger.Fatal("Cannot open result database", zap.String("path", dbPath), zap.Error(err))
	}
	defer store.Close()

	embedder, err := embedding.NewProvider(embedding.Config{
		Provider:   util.GetEnv("EMBEDDING_PROVIDER", embedding.ProviderMock),
		URL:        util.GetEnv("EMBEDDING_API_URL", ""),
		APIKey:     util.GetEnv("EMBEDDING_API_KEY", ""),
		Model:      util.GetEnv("EMBEDDING_MODEL", embedding.DefaultModel),
		VectorPath: util.GetEnv("EMBEDDING_VECTOR_PATH", ""),
		Timeout:    timeout,
	})
	if err != nil {
		logger.Fatal("Cannot configure embedding provider", zap.Error(err))
	}

	uniprotClient := uniprot.NewClient(util.GetEnv("UNIPROT_BASE_URL", uniprot.DefaultBaseURL), timeout)

	app := &handler.AppContext{
		Analyzer:  &model.Analyzer{Embedder: embedder, Metadata: uniprotClient},
		Store:     store,
		UniProt:   uniprotClient,
		BatchJobs: handler.NewBatchJobManager(workers),
	}

	providerName := embedding.ProviderNone
	if embedder != nil {
		providerName = embedder.Name()
	}
	logger.Info("Start:", zap.String("Version", VERSION))
	logger.Info("Open database on", zap.String("DB_LOC", dbPath))
	logger.Info("Embedding provider", zap.String("provider", providerName))

	mux := handler.NewRouter(app)

	// Apply middleware
	h := middle.Chain(mux, middle.RequestIDMiddleware(logger.L()), middle.LoggingMiddleware(logger.L()))

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("Error starting server:", zap.String("error message", err.Error()))
	}
}
