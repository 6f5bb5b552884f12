package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pluqqy/itemgrid/internal/cli"
	"github.com/pluqqy/itemgrid/internal/logging"
	"github.com/pluqqy/itemgrid/pkg/source"
)

const shutdownTimeout = 5 * time.Second

var serveAddr string

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local library over HTTP",
		Long: `Serve the local SQLite library so other itemgrid instances can browse
it remotely by setting data.remote in their settings.yaml.

Endpoints:
  GET /items?offset=&count=&sort=&dir=&q=
  GET /items/index?key=&sort=&dir=&q=
  GET /healthz`,
		Args:    cobra.NoArgs,
		PreRunE: requireProject,
		RunE:    runServe,
	}

	cmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8750", "Listen address")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cli.ValidateListenAddr(serveAddr); err != nil {
		return err
	}

	cmdCtx := cli.NewCommandContext("")
	lib, err := cmdCtx.OpenDatabase(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to open library: %w", err)
	}
	defer lib.Close()

	log := logging.NewCLILogger().With("server")
	srv := &http.Server{
		Addr:              serveAddr,
		Handler:           newServeHandler(lib.SQLite, log.Zerolog()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	cli.PrintInfo("Serving %s on http://%s", cmdCtx.Store.DatabasePath(cmdCtx.LoadSettingsWithDefault()), serveAddr)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newServeHandler(src source.Source, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()
	source.NewServer(src, log).RegisterRoutes(mux)
	return mux
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
