// Package main provides the shelfdex CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/shelfdex/shelfdex/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "shelfdex",
	Short: "Book recommendation service over a local vector index",
	Long: `shelfdex serves grounded book recommendations: a flat vector index over
a curated catalog, multi-signal reranking, and an LLM answer that is
reconciled against the retrieved candidates so it can never recommend a
book the catalog does not hold.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	// Missing .env is fine; real deployments use the environment directly.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit %s)", version.Version, version.Commit)
}
