package cmd

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"

	"github.com/briefdeck/briefdeck/internal/api"
)

var (
	mockPort      int
	mockBind      string
	mockSeed      uint64
	mockRateLimit float64
	mockOrigins   []string
)

var mockServerCmd = &cobra.Command{
	Use:   "mock-server",
	Short: "Run the bundled demo backend",
	Long: `Run an in-memory backend implementing the REST API under /api/v1,
seeded with deterministic demo emails, categories and analyzed stories.
Analyzing an email produces a synthetic analysis and marks it processed.

Settings come from the [mock] section of config.toml; flags override them.

Examples:
  briefdeck mock-server
  briefdeck mock-server --port 9090 --seed 42

Use Ctrl+C to stop the server gracefully.`,
	Args: cobra.NoArgs,
	RunE: runMockServer,
}

func runMockServer(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("port") {
		cfg.Mock.Port = mockPort
	}
	if cmd.Flags().Changed("bind") {
		cfg.Mock.BindAddr = mockBind
	}
	if cmd.Flags().Changed("seed") {
		cfg.Mock.Seed = mockSeed
	}

	data := api.NewDataset()
	if err := api.Seed(data, cfg.Mock.Seed); err != nil {
		return fmt.Errorf("seed dataset: %w", err)
	}

	addr := cfg.MockAddr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := api.NewServer(api.Options{
		Addr:        addr,
		APIKey:      cfg.Mock.APIKey,
		CORSOrigins: mockOrigins,
		RateLimit:   mockRateLimit,
		RateBurst:   int(mockRateLimit * 2),
	}, data, logger)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Serve(ln)
	}()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Mock backend listening on http://%s/api/v1\n", ln.Addr())
	fmt.Fprintf(out, "  Seed: %d, emails: %d, categories: %d\n", cfg.Mock.Seed, len(data.Emails(0, 1<<20, nil)), len(data.Categories()))
	fmt.Fprintln(out, "Press Ctrl+C to stop.")

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("mock backend: %w", err)
		}
		return nil
	case <-cmd.Context().Done():
		logger.Info("context cancelled")
	}

	fmt.Fprintln(out, "Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-serverErr
}

func init() {
	mockServerCmd.Flags().IntVar(&mockPort, "port", 8080, "listen port")
	mockServerCmd.Flags().StringVar(&mockBind, "bind", "127.0.0.1", "listen address")
	mockServerCmd.Flags().Uint64Var(&mockSeed, "seed", 1, "demo dataset seed")
	mockServerCmd.Flags().Float64Var(&mockRateLimit, "rate-limit", 0, "per-IP requests per second (0 disables)")
	mockServerCmd.Flags().StringSliceVar(&mockOrigins, "cors-origin", nil, "allowed CORS origin (repeatable)")
	rootCmd.AddCommand(mockServerCmd)
}
