// Package cli implements the herd-inventory command line: a dashboard
// server and a one-shot scan that prints the inventory as JSON.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/sykell/herd-inventory/internal/api"
	"github.com/sykell/herd-inventory/internal/config"
	"github.com/sykell/herd-inventory/internal/service"
)

// ErrIncomplete is returned by a strict scan when a root or the database
// server could not be inventoried
var ErrIncomplete = errors.New("inventory incomplete")

// App carries the flags shared by every command
type App struct {
	envFile string
	roots   string
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "herd-inventory",
		Short:         "Inventory of local Herd sites and their MySQL databases",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&app.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	cmd.PersistentFlags().StringVar(&app.roots, "roots", "", "scan roots as a path list, overrides SCAN_ROOTS")

	cmd.AddCommand(
		newServeCmd(app),
		newScanCmd(app),
	)
	return cmd
}

func newServeCmd(app *App) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the inventory dashboard and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Server.ListenAddr = listen
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address, overrides LISTEN_ADDR")
	return cmd
}

func newScanCmd(app *App) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one inventory pass and print it as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}

			snap := service.NewInventoryService(cfg, nil, nil).Snapshot(cmd.Context())

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(snap); err != nil {
				return fmt.Errorf("failed to write inventory: %w", err)
			}

			if strict && (len(snap.ScanErrors) > 0 || snap.DatabaseError != "") {
				return ErrIncomplete
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when a root or the database server failed")
	return cmd
}

func (a *App) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return nil, err
	}
	if a.roots != "" {
		exclude := cfg.ScanRoots[0].Exclude
		cfg.ScanRoots = config.ParseScanRoots(a.roots, exclude)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	gin.SetMode(gin.ReleaseMode)

	svc := service.NewInventoryService(cfg, nil, nil)
	srv := &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      api.NewRouter(cfg, svc),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	if cfg.Auth.Enabled() {
		log.Printf("Dashboard login enabled for user %s", cfg.Auth.Username)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting dashboard on http://%s", cfg.Server.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

// Execute runs the root command. It is the single entry point for the
// command-line interface.
func Execute() {
	app := &App{}
	rootCmd := newRootCmd(app)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
