package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"shellgate/internal/server"
	"shellgate/internal/systemd"
)

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config listen_addr)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP gate daemon",
	Long:  "Runs shellgate as an HTTP daemon: command submission, the SSE\nconfirmation event stream, acknowledgments, and history queries.\nSupports hot-reload of the rules file.",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	c, err := buildComponents(nil)
	if err != nil {
		return fmt.Errorf("failed to build daemon: %w", err)
	}
	defer c.Close()

	if warning := systemd.CheckUnitFileIntegrity(); warning != "" {
		c.logger.Warn("unit file integrity", "warning", warning)
	}

	addr := c.cfg.ListenAddr
	if serveAddr != "" {
		addr = serveAddr
	}

	srv := server.New(addr, c.gate, c.coordinator, c.broker, c.history, c.logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloader, err := server.NewReloader(c.gate, c.cfg.RulesPath, c.logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: hot-reload disabled: %v\n", err)
	}
	if reloader != nil {
		go reloader.Run(ctx)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		c.logger.Info("shutting down")
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	c.logger.Info("shellgate daemon starting",
		"addr", addr,
		"auto_mode", c.gate.Mode(),
		"restricted", c.cfg.RestrictedMode,
	)
	return srv.Serve()
}
