package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/SergeyParamoshkin/articlehub/internal/metrics"
	"github.com/SergeyParamoshkin/articlehub/internal/mockapi"
)

const shutdownTimeout = 5 * time.Second

var mockapiCmd = &cobra.Command{
	Use:   "mockapi",
	Short: "Serve an in-memory article API",
	Long: `Serve an in-memory implementation of the article platform API.

The server is seeded with two demo accounts (peter@example.com and
julia@example.com, password Passw0rd!) and a handful of articles. Data is
lost when the process exits.`,
	RunE: runMockAPI,
}

func init() {
	rootCmd.AddCommand(mockapiCmd)

	mockapiCmd.Flags().String("addr", "", "listen address (default from mockapi.addr)")
	mockapiCmd.Flags().Bool("routes", false, "print the route documentation and exit")
	_ = v.BindPFlag("mockapi.addr", mockapiCmd.Flags().Lookup("addr"))
}

func runMockAPI(cmd *cobra.Command, args []string) error {
	provider, err := metrics.New()
	if err != nil {
		return err
	}
	defer shutdownMetrics(provider)

	srv, err := mockapi.New(mockapi.WithLogger(logger), mockapi.WithMeter(provider.Meter()))
	if err != nil {
		return err
	}

	if routes, _ := cmd.Flags().GetBool("routes"); routes {
		fmt.Fprintln(cmd.OutOrStdout(), srv.RoutesDoc())

		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Diag.Addr != "" {
		go serve(ctx, "diag", cfg.Diag.Addr, provider.DiagRouter())
	}

	return serve(ctx, "mockapi", cfg.MockAPI.Addr, srv)
}

// serve runs h on addr until ctx is done.
func serve(ctx context.Context, name, addr string, h http.Handler) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("listening", "server", name, "addr", addr)
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Errorw("server stopped", "server", name, "error", err)

		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Infow("shutting down", "server", name)

	return hs.Shutdown(shutdownCtx)
}

func shutdownMetrics(p *metrics.Provider) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := p.Shutdown(ctx); err != nil {
		logger.Warnw("metrics shutdown", "error", err)
	}
}
