package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/briefdeck/briefdeck/internal/config"
	"github.com/briefdeck/briefdeck/internal/remote"
)

var (
	cfgFile string
	homeDir string
	verbose bool
	cfg     *config.Config
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "briefdeck",
	Short: "Email digest dashboard",
	Long: `briefdeck is a terminal dashboard for an email aggregation backend.

It lists incoming emails, triggers AI analysis, and lays analyzed stories
out as a dashboard, a newspaper front page, or a masonry grid that adapts
to the terminal width.

Run 'briefdeck mock-server' to try it against a bundled demo backend.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}))

		// --home is passed through so it influences where config.toml is
		// loaded from, like BRIEFDECK_HOME.
		var err error
		cfg, err = config.Load(cfgFile, homeDir)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		if err := cfg.EnsureHomeDir(); err != nil {
			return fmt.Errorf("create home directory %s: %w", cfg.HomeDir, err)
		}
		return nil
	},
}

// Execute runs the root command with a background context.
// Prefer ExecuteContext for signal-aware execution.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with the given context,
// enabling graceful shutdown when the context is cancelled.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// newClient builds a backend client from the loaded config.
func newClient() (*remote.Client, error) {
	timeout, err := cfg.APITimeout()
	if err != nil {
		return nil, err
	}
	c, err := remote.New(remote.Config{
		URL:           cfg.API.URL,
		APIKey:        cfg.API.APIKey,
		AllowInsecure: cfg.API.AllowInsecure,
		Timeout:       timeout,
		RateLimitQPS:  cfg.API.RateLimitQPS,
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return c.WithLogger(logger), nil
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.briefdeck/config.toml)")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "home directory (overrides BRIEFDECK_HOME)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
