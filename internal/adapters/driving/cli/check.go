package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kbase/internal/adapters/driven/ai"
	"github.com/custodia-labs/kbase/internal/core/domain"
)

// sampleQueries exercise the default real-estate knowledge base.
var sampleQueries = []string{
	"What are the different types of properties?",
	"How do I buy a house?",
	"What are current market trends?",
	"How does the mortgage process work?",
}

const checkK = 3

var (
	checkIndex string
	checkPing  bool
)

// pingEmbedder validates provider connectivity.
var pingEmbedder = ai.ValidateEmbeddingConfig

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the index and run sample queries",
	Long: `Loads the index, prints a summary of it and runs a few sample queries,
showing the best match for each. With --ping the embedding provider is
contacted first.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkIndex, "index", "", "index artifact path (default from config)")
	checkCmd.Flags().BoolVar(&checkPing, "ping", false, "also check that the embedding provider is reachable")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	if kbService == nil {
		return errors.New("knowledge base service not configured")
	}
	ctx := cmd.Context()

	cmd.Println(titleStyle.Render("Knowledge base check"))
	cmd.Println()

	if checkPing {
		if err := pingEmbedder(ctx, appConfig.Embedding); err != nil {
			cmd.Println(failure("Embedding provider: " + err.Error()))
			printCheckHints(cmd)
			return fmt.Errorf("check: %w", err)
		}
		cmd.Println(success(fmt.Sprintf("Embedding provider reachable (%s)", appConfig.Embedding.Model)))
	}

	info, err := kbService.Inspect(ctx, checkIndex)
	if err != nil {
		cmd.Println(failure("Index not loaded: " + err.Error()))
		if errors.Is(err, domain.ErrArtifactNotFound) {
			cmd.Println(mutedStyle.Render("Run `kbase ingest` first."))
		}
		printCheckHints(cmd)
		return fmt.Errorf("check: %w", err)
	}

	cmd.Println(success("Index loaded"))
	cmd.Printf("  Path:       %s\n", info.ArtifactPath)
	cmd.Printf("  Chunks:     %d\n", info.Entries)
	cmd.Printf("  Dimensions: %d\n", info.Dimensions)
	cmd.Printf("  Model:      %s\n", info.Model)
	for _, src := range info.Sources {
		cmd.Printf("  Source:     %s\n", src)
	}
	cmd.Println()

	failed := 0
	for _, q := range sampleQueries {
		cmd.Printf("Query: %s\n", q)
		results, err := kbService.Query(ctx, q, domain.QueryOptions{K: checkK, ArtifactPath: checkIndex})
		switch {
		case err != nil:
			failed++
			cmd.Println("  " + failure(err.Error()))
		case len(results) == 0:
			cmd.Println("  " + warning("no results"))
		default:
			cmd.Printf("  %s\n", success(fmt.Sprintf("%d results, top score %.2f", len(results), results[0].Score)))
			cmd.Printf("  %s\n", mutedStyle.Render(preview(results[0].Document.Content, 100)))
		}
		cmd.Println()
	}

	if failed > 0 {
		printCheckHints(cmd)
		return fmt.Errorf("check: %d of %d queries failed", failed, len(sampleQueries))
	}
	cmd.Println(success("All queries completed"))
	return nil
}

func printCheckHints(cmd *cobra.Command) {
	cmd.Println()
	cmd.Println("Make sure that:")
	cmd.Println("  1. DEEPSEEK_API_KEY is set in .env.local or the environment")
	cmd.Println("  2. `kbase ingest` has been run")
	cmd.Printf("  3. %s exists\n", appConfig.SourcePath)
}
