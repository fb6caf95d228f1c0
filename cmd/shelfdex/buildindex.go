package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shelfdex/shelfdex/internal/catalog"
	"github.com/shelfdex/shelfdex/internal/config"
	"github.com/shelfdex/shelfdex/internal/domain"
	"github.com/shelfdex/shelfdex/internal/index"
	logpkg "github.com/shelfdex/shelfdex/internal/logger"
	"github.com/shelfdex/shelfdex/internal/metrics"
	openaiTransport "github.com/shelfdex/shelfdex/internal/transport/openai"
)

var buildIndexCatalog string

func init() {
	buildIndexCmd.Flags().StringVar(&buildIndexCatalog, "catalog", "",
		"catalog CSV path (default: index.catalog from config)")
	rootCmd.AddCommand(buildIndexCmd)
}

var buildIndexCmd = &cobra.Command{
	Use:   "build-index",
	Short: "Embed the catalog and write the index artifacts",
	Long: `build-index reads the cleaned catalog CSV, embeds each book's retrieval
text in batches, and writes the vector blob and book list that serve and
eval load at startup.`,
	RunE: runBuildIndex,
}

func runBuildIndex(_ *cobra.Command, _ []string) error {
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

	metrics.Register()

	catalogPath := buildIndexCatalog
	if catalogPath == "" {
		catalogPath = cfg.Index.Catalog
	}

	entries, err := catalog.Load(catalogPath, logger)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("catalog %s has no indexable rows", catalogPath)
	}
	logger.Info("Catalog loaded",
		zap.String("path", catalogPath),
		zap.Int("books", len(entries)),
	)

	embedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:            cfg.Embedding.APIKey,
		BaseURL:           cfg.Embedding.BaseURL,
		Model:             cfg.Embedding.Model,
		Dimensions:        cfg.Embedding.Dimensions,
		Provider:          cfg.Embedding.Provider,
		RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
		Logger:            logger,
	})

	ctx := context.Background()
	start := time.Now()

	idx, tokens, err := buildIndex(ctx, embedder, entries, cfg.Embedding.BatchSize, logger)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Index.Dir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	vectorPath := filepath.Join(cfg.Index.Dir, vectorArtifact)
	metaPath := filepath.Join(cfg.Index.Dir, metaArtifact)
	if err := idx.Save(vectorPath, metaPath); err != nil {
		return fmt.Errorf("save index: %w", err)
	}

	logger.Info("Index built",
		zap.Int("books", idx.Len()),
		zap.Int("dim", idx.Dim()),
		zap.Int("total_tokens", tokens),
		zap.Duration("elapsed", time.Since(start)),
		zap.String("vectors", vectorPath),
		zap.String("meta", metaPath),
	)
	return nil
}

// buildIndex embeds the catalog batch by batch and grows the index in
// lock-step. The dimension comes from the first returned vector, so a
// provider that ignores the requested dimensions still yields a
// self-consistent index.
func buildIndex(
	ctx context.Context,
	embedder domain.BatchEmbedder,
	entries []catalog.Entry,
	batchSize int,
	logger *zap.Logger,
) (*index.Flat, int, error) {
	if batchSize <= 0 {
		batchSize = 64
	}

	var idx *index.Flat
	totalTokens := 0

	for lo := 0; lo < len(entries); lo += batchSize {
		hi := lo + batchSize
		if hi > len(entries) {
			hi = len(entries)
		}
		batch := entries[lo:hi]

		texts := make([]string, len(batch))
		books := make([]domain.Book, len(batch))
		for i, e := range batch {
			texts[i] = e.RetrievalText
			books[i] = e.Book
		}

		res, err := embedder.BatchEmbed(ctx, texts)
		if err != nil {
			return nil, 0, fmt.Errorf("embed batch %d-%d: %w", lo, hi, err)
		}
		if len(res.Embeddings) != len(batch) {
			return nil, 0, fmt.Errorf("embed batch %d-%d: got %d vectors for %d texts",
				lo, hi, len(res.Embeddings), len(batch))
		}
		totalTokens += res.TotalTokens

		if idx == nil {
			idx, err = index.New(len(res.Embeddings[0]))
			if err != nil {
				return nil, 0, err
			}
		}
		if err := idx.Add(res.Embeddings, books); err != nil {
			return nil, 0, fmt.Errorf("add batch %d-%d: %w", lo, hi, err)
		}

		logger.Info("Batch embedded",
			zap.Int("from", lo), zap.Int("to", hi), zap.Int("indexed", idx.Len()))
	}

	return idx, totalTokens, nil
}
