package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shelfdex/shelfdex/internal/config"
	"github.com/shelfdex/shelfdex/internal/index"
	logpkg "github.com/shelfdex/shelfdex/internal/logger"
	"github.com/shelfdex/shelfdex/internal/metrics"
	openaiTransport "github.com/shelfdex/shelfdex/internal/transport/openai"
	"github.com/shelfdex/shelfdex/internal/usecase/eval"
	"github.com/shelfdex/shelfdex/internal/usecase/retrieval"
)

var (
	evalFixtures string
	evalK        int
	evalOut      string
)

func init() {
	evalCmd.Flags().StringVar(&evalFixtures, "fixtures", "data/eval/fixtures.json",
		"labeled query fixture file")
	evalCmd.Flags().IntVar(&evalK, "k", 10, "retrieval depth")
	evalCmd.Flags().StringVar(&evalOut, "out", "",
		"write the full report JSON to this file (default: stdout summary only)")
	rootCmd.AddCommand(evalCmd)
}

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Score retrieval quality against labeled fixtures",
	Long: `eval loads the built index, retrieves every fixture query at depth k,
and reports mean recall, precision, and reciprocal rank against the
labeled relevant titles.`,
	RunE: runEval,
}

func runEval(_ *cobra.Command, _ []string) error {
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

	idx, err := index.Load(
		filepath.Join(cfg.Index.Dir, vectorArtifact),
		filepath.Join(cfg.Index.Dir, metaArtifact),
	)
	if err != nil {
		return fmt.Errorf("load index (run build-index first): %w", err)
	}
	logger.Info("Index loaded", zap.Int("books", idx.Len()), zap.Int("dim", idx.Dim()))

	embedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:            cfg.Embedding.APIKey,
		BaseURL:           cfg.Embedding.BaseURL,
		Model:             cfg.Embedding.Model,
		Dimensions:        cfg.Embedding.Dimensions,
		Provider:          cfg.Embedding.Provider,
		RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
		Logger:            logger,
	})
	retriever := retrieval.New(embedder, idx)

	fixtures, err := eval.LoadFixtures(evalFixtures)
	if err != nil {
		return err
	}
	logger.Info("Fixtures loaded", zap.String("path", evalFixtures), zap.Int("queries", len(fixtures)))

	report, err := eval.Run(context.Background(), retriever, fixtures, evalK)
	if err != nil {
		return err
	}

	fmt.Printf("queries: %d  k: %d\n", len(report.Queries), report.K)
	fmt.Printf("mean recall@k:     %.4f\n", report.MeanRecallAtK)
	fmt.Printf("mean precision@k:  %.4f\n", report.MeanPrecisionAtK)
	fmt.Printf("mean MRR:          %.4f\n", report.MeanReciprocalRank)

	if evalOut != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		if err := os.WriteFile(evalOut, data, 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		logger.Info("Report written", zap.String("path", evalOut))
	}
	return nil
}
