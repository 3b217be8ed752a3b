// Command domainfolioctl inspects and edits the domain portfolio from the
// shell, against the same store the server uses.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/poyrazK/domainfolio/internal/adapters/kvstore"
	"github.com/poyrazK/domainfolio/internal/adapters/seed"
	"github.com/poyrazK/domainfolio/internal/config"
	"github.com/poyrazK/domainfolio/internal/core/services"
	"github.com/spf13/cobra"
)

// env is what every subcommand works against.
type env struct {
	portfolio *services.Portfolio
	gateway   *services.Gateway
	close     func()
}

type opener func(ctx context.Context) (*env, error)

var (
	configPath string
	verbose    bool
)

func main() {
	if err := rootCmd(openEnv).Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd(open opener) *cobra.Command {
	root := &cobra.Command{
		Use:          "domainfolioctl",
		Short:        "Manage the domain portfolio",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "YAML config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log store activity to stderr")

	root.AddCommand(exportCmd(open))
	root.AddCommand(importCmd(open))
	root.AddCommand(validateCmd(open))
	root.AddCommand(duplicatesCmd(open))
	root.AddCommand(expiringCmd(open))
	return root
}

func cliLogger() *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// openEnv connects to the configured store.
func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return nil, err
	}
	logger := cliLogger()

	src, err := seed.Load(cfg.SeedFile)
	if err != nil {
		return nil, err
	}
	be, err := kvstore.Open(ctx, cfg.Store, logger)
	if err != nil {
		return nil, err
	}
	portfolio, err := services.NewPortfolio(src, be.Store, cfg.CacheMaxCost, logger)
	if err != nil {
		_ = be.Close()
		return nil, err
	}
	return &env{
		portfolio: portfolio,
		gateway:   services.NewGateway(src, be.Store, portfolio, logger),
		close: func() {
			portfolio.Close()
			if err := be.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "warning: close store: %v\n", err)
			}
		},
	}, nil
}
