package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shelfdex/shelfdex/internal/config"
	"github.com/shelfdex/shelfdex/internal/db"
	dbRedis "github.com/shelfdex/shelfdex/internal/db/redis"
	"github.com/shelfdex/shelfdex/internal/domain"
	"github.com/shelfdex/shelfdex/internal/index"
	logpkg "github.com/shelfdex/shelfdex/internal/logger"
	"github.com/shelfdex/shelfdex/internal/metrics"
	"github.com/shelfdex/shelfdex/internal/mood"
	"github.com/shelfdex/shelfdex/internal/repository/embcache"
	"github.com/shelfdex/shelfdex/internal/transport/httpapi"
	openaiTransport "github.com/shelfdex/shelfdex/internal/transport/openai"
	healthuc "github.com/shelfdex/shelfdex/internal/usecase/health"
	"github.com/shelfdex/shelfdex/internal/usecase/pipeline"
	"github.com/shelfdex/shelfdex/internal/usecase/recommend"
	"github.com/shelfdex/shelfdex/internal/usecase/retrieval"
	"github.com/shelfdex/shelfdex/internal/version"
)

// Index artifact file names inside cfg.Index.Dir. build-index writes them,
// serve and eval read them.
const (
	vectorArtifact = "vectors.bin"
	metaArtifact   = "books.json"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the recommendation HTTP API",
	RunE:  runServe,
}

func runServe(_ *cobra.Command, _ []string) error {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting shelfdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("index_dir", cfg.Index.Dir),
	)

	metrics.Register()

	ctx := context.Background()

	// The cache store is optional. No addresses means every embedding call
	// goes straight to the provider.
	var store db.Store
	if len(cfg.Database.Addrs) > 0 {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Username: cfg.Database.Username,
			Password: cfg.Database.Password,
			DB:       cfg.Database.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		readiness := cfg.Database.ReadinessTimeout
		if readiness <= 0 {
			readiness = 10
		}
		if err := store.WaitForReady(ctx, time.Duration(readiness)*time.Second); err != nil {
			logger.Fatal("Cache store not ready", zap.Error(err))
		}
		logger.Info("Connected to cache store", zap.Strings("addrs", cfg.Database.Addrs))
	}

	baseEmbedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:            cfg.Embedding.APIKey,
		BaseURL:           cfg.Embedding.BaseURL,
		Model:             cfg.Embedding.Model,
		Dimensions:        cfg.Embedding.Dimensions,
		Provider:          cfg.Embedding.Provider,
		RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
		Logger:            logger,
	})

	var embedder domain.Embedder = baseEmbedder
	if store != nil {
		ttl := time.Duration(cfg.Database.CacheTTLSec) * time.Second
		embedder = embcache.New(baseEmbedder, store, ttl, metrics.EmbeddingCacheTotal, logger)
	}
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Bool("cached", store != nil),
	)

	generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:      cfg.Generation.APIKey,
		BaseURL:     cfg.Generation.BaseURL,
		Model:       cfg.Generation.Model,
		Temperature: cfg.Generation.Temperature,
		MaxTokens:   cfg.Generation.MaxTokens,
		Timeout:     time.Duration(cfg.Generation.TimeoutSec) * time.Second,
		Retries:     cfg.Generation.Retries,
		Backoff:     time.Duration(cfg.Generation.BackoffMs) * time.Millisecond,
		Logger:      logger,
	})

	var classifier mood.Classifier
	if cfg.Mood.ClassifierEnabled {
		classifier = openaiTransport.NewMoodClassifier(
			cfg.Generation.APIKey, cfg.Generation.BaseURL, cfg.Mood.Model,
		)
	}
	moods := mood.New(classifier, logger)

	idx, err := index.Load(
		filepath.Join(cfg.Index.Dir, vectorArtifact),
		filepath.Join(cfg.Index.Dir, metaArtifact),
	)
	if err != nil {
		logger.Fatal("Failed to load index; run build-index first", zap.Error(err))
	}
	logger.Info("Index loaded", zap.Int("books", idx.Len()), zap.Int("dim", idx.Dim()))

	retriever := retrieval.New(embedder, idx)
	if len(cfg.Retrieval.Themes) > 0 || len(cfg.Retrieval.Tones) > 0 {
		themes, tones, err := keywordTables(cfg.Retrieval)
		if err != nil {
			logger.Fatal("Invalid keyword tables", zap.Error(err))
		}
		retriever.WithKeywordTables(themes, tones)
	}

	pipe := pipeline.New(retriever, generator, moods, logger).
		WithFanOut(cfg.Index.FanOut)

	facade := recommend.New(pipe, retriever, embedder, idx, logger)
	if cfg.Audit.Enabled {
		facade.WithAuditLog(recommend.NewAuditLog(cfg.Audit.Dir, logger))
	}

	healthSvc := healthuc.New(idx, baseEmbedder, generator)

	server := httpapi.NewServer(facade, healthSvc, logger)
	router := server.Router(cfg.Auth.APIKeys)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// keywordTables converts the config override into validated tables. Both
// tables must be supplied together; a partial override falls back to the
// built-in table for the missing half.
func keywordTables(cfg config.RetrievalConfig) (retrieval.KeywordTable, retrieval.KeywordTable, error) {
	themes := retrieval.DefaultThemes()
	if len(cfg.Themes) > 0 {
		themes = retrieval.KeywordTable(cfg.Themes)
		if err := themes.Validate(); err != nil {
			return nil, nil, fmt.Errorf("themes: %w", err)
		}
	}
	tones := retrieval.DefaultTones()
	if len(cfg.Tones) > 0 {
		tones = retrieval.KeywordTable(cfg.Tones)
		if err := tones.Validate(); err != nil {
			return nil, nil, fmt.Errorf("tones: %w", err)
		}
	}
	return themes, tones, nil
}
