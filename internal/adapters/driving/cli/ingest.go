package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kbase/internal/core/domain"
)

var (
	ingestFile      string
	ingestChunkSize int
	ingestOverlap   int
	ingestOutput    string
	ingestWatch     bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build the knowledge base from a markdown file",
	Long: `Reads the source document, splits it into overlapping chunks, embeds every
chunk and writes the vector index to disk.

Each run is a full rebuild: the previous index is replaced only when the new
one has been written successfully. Any failure leaves the old index intact.

Examples:
  kbase ingest
  kbase ingest --file docs/handbook.md --chunk-size 500 --overlap 50
  kbase ingest --watch`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestFile, "file", "f", "", "source markdown file (default from config)")
	ingestCmd.Flags().IntVar(&ingestChunkSize, "chunk-size", domain.DefaultChunkSize, "maximum characters per chunk")
	ingestCmd.Flags().IntVar(&ingestOverlap, "overlap", domain.DefaultChunkOverlap, "characters shared by adjacent chunks")
	ingestCmd.Flags().StringVarP(&ingestOutput, "output", "o", "", "index artifact path (default from config)")
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "rebuild whenever the source file changes")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if kbService == nil {
		return errors.New("knowledge base service not configured")
	}

	req := ingestRequest(cmd)
	err := ingestOnce(cmd.Context(), cmd, req)
	if !ingestWatch {
		return err
	}

	path := req.SourcePath
	if path == "" {
		path = appConfig.SourcePath
	}
	cmd.Println(mutedStyle.Render(fmt.Sprintf("Watching %s for changes (Ctrl+C to stop)", path)))
	return watchFile(cmd.Context(), path, watchDebounce, func(ctx context.Context) {
		// Failures are reported; watching continues.
		_ = ingestOnce(ctx, cmd, req)
	})
}

// ingestRequest resolves chunk parameters: flags win over the configuration.
func ingestRequest(cmd *cobra.Command) domain.IngestRequest {
	req := domain.IngestRequest{
		SourcePath:   ingestFile,
		ArtifactPath: ingestOutput,
		ChunkSize:    appConfig.Chunk.Size,
		ChunkOverlap: appConfig.Chunk.Overlap,
	}
	if cmd.Flags().Changed("chunk-size") {
		req.ChunkSize = ingestChunkSize
	}
	if cmd.Flags().Changed("overlap") {
		req.ChunkOverlap = ingestOverlap
	}
	return req
}

func ingestOnce(ctx context.Context, cmd *cobra.Command, req domain.IngestRequest) error {
	result, err := kbService.Ingest(ctx, req)
	if err != nil || !result.Success {
		reason := result.Error
		if reason == "" && err != nil {
			reason = err.Error()
		}
		cmd.Println(failure("Ingest failed: " + reason))
		cmd.Println(mutedStyle.Render(ingestHint(err)))
		if err == nil {
			err = errors.New(reason)
		}
		return fmt.Errorf("ingest: %w", err)
	}

	cmd.Println(success(fmt.Sprintf("Indexed %d chunks", result.ChunkCount)))
	cmd.Printf("  Index:    %s\n", result.ArtifactPath)
	cmd.Printf("  Duration: %s\n", result.Duration.Round(time.Millisecond))
	return nil
}

// ingestHint suggests the most likely fix for a failed ingest.
func ingestHint(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "Check that the source file exists, or pass --file."
	case errors.Is(err, domain.ErrEmbeddingUnavailable), errors.Is(err, domain.ErrAuthInvalid):
		return "Set DEEPSEEK_API_KEY in .env.local or the environment."
	case errors.Is(err, domain.ErrRateLimited):
		return "The provider is rate limiting requests; lower embedding.concurrency or raise embedding.batch_delay."
	case errors.Is(err, domain.ErrInvalidInput):
		return "Chunk size must be positive and overlap smaller than the chunk size."
	default:
		return "Run with --verbose for details."
	}
}
