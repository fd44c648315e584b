package main

import (
	"context"
	"os"

	"github.com/skyforgehq/playpub/internal/shared"
	"github.com/urfave/cli/v3"
)

// main wires dependencies and makes the process exit decision exactly once:
// any error returned from a command logs and exits 1, success exits 0.
func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "playpub",
		Usage:    "Publish app bundles to a store release track",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
