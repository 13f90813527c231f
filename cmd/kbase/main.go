// Command kbase builds and queries a local knowledge base.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/kbase/internal/adapters/driving/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Missing files are fine; the environment may already be set.
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
