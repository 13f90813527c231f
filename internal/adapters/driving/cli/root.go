// Package cli provides the kbase command-line interface.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kbase/internal/core/domain"
	"github.com/custodia-labs/kbase/internal/core/ports/driving"
	"github.com/custodia-labs/kbase/internal/logger"
)

var (
	version = "dev"

	verbose   bool
	configDir string

	// kbService is set by wiring, or by tests before Execute.
	kbService     driving.KnowledgeBaseService
	appConfig     = domain.DefaultKnowledgeBaseConfig()
	closeServices func() error
)

var rootCmd = &cobra.Command{
	Use:   "kbase",
	Short: "Build and query a local knowledge base",
	Long: `kbase turns a markdown document into a searchable knowledge base.

It splits the document into overlapping chunks, embeds each chunk with an
OpenAI-compatible embeddings API (DeepSeek by default) and stores the
vectors in an approximate nearest-neighbour index on disk. Queries embed
the question and return the most similar chunks.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.kbase)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the CLI. The context is cancelled on SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer shutdown()

	return rootCmd.ExecuteContext(ctx)
}

// setup wires the services once, before any command runs.
func setup(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[annotationNoServices] == "true" {
		return nil
	}
	if kbService != nil {
		logger.SetVerbose(verbose || appConfig.Log.Verbose)
		return nil
	}

	svc, cfg, closer, err := wire(configDir)
	if err != nil {
		return err
	}
	kbService = svc
	appConfig = cfg
	closeServices = closer
	return nil
}

func shutdown() {
	if closeServices == nil {
		return
	}
	if err := closeServices(); err != nil {
		logger.Warn("closing services: %v", err)
	}
	closeServices = nil
}

// annotationNoServices marks commands that run without wiring.
const annotationNoServices = "kbase/no-services"
