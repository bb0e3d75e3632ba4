package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/pipeline"
	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/server"
	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/version"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP document processing API",
	Long: `Start an HTTP server exposing the document processing chain.

Endpoints:
  POST   /ocr                      Process an uploaded document
  GET    /documents                List stored documents
  GET    /documents/{id}           Retrieve a stored document
  DELETE /documents/{id}           Delete a stored document
  GET    /documents/{id}/export    Export as JSON or plain text
  GET    /stats                    Store statistics
  GET    /health                   Health check
  GET    /metrics                  Prometheus metrics
  GET    /ws                       WebSocket processing with live progress

Examples:
  medocr serve
  medocr serve --port 3000 --host 0.0.0.0
  medocr serve --rate-limit-rps 5`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		srvCfg := cfg.Server
		if cmd.Flags().Changed("host") {
			srvCfg.Host, _ = cmd.Flags().GetString("host")
		}
		if cmd.Flags().Changed("port") {
			srvCfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("cors-origin") {
			srvCfg.CORSOrigin, _ = cmd.Flags().GetString("cors-origin")
		}
		if cmd.Flags().Changed("max-upload-size") {
			srvCfg.MaxUploadMB, _ = cmd.Flags().GetInt("max-upload-size")
		}
		if cmd.Flags().Changed("timeout") {
			srvCfg.TimeoutSec, _ = cmd.Flags().GetInt("timeout")
		}
		if cmd.Flags().Changed("shutdown-timeout") {
			srvCfg.ShutdownTimeout, _ = cmd.Flags().GetInt("shutdown-timeout")
		}
		if cmd.Flags().Changed("store-limit") {
			srvCfg.StoreLimit, _ = cmd.Flags().GetInt("store-limit")
		}
		if cmd.Flags().Changed("rate-limit-rps") {
			srvCfg.RateLimitRPS, _ = cmd.Flags().GetFloat64("rate-limit-rps")
		}
		if cmd.Flags().Changed("rate-limit-burst") {
			srvCfg.RateLimitBurst, _ = cmd.Flags().GetInt("rate-limit-burst")
		}

		if srvCfg.Port < 1 || srvCfg.Port > 65535 {
			return fmt.Errorf("invalid port number: %d (must be between 1 and 65535)", srvCfg.Port)
		}

		p, err := pipeline.NewBuilder().WithConfig(cfg.Pipeline).Build()
		if err != nil {
			return fmt.Errorf("failed to build pipeline: %w", err)
		}
		defer func() { _ = p.Close() }()

		srv := server.New(p, srvCfg, version.Version)

		httpServer := &http.Server{
			Addr:              fmt.Sprintf("%s:%d", srvCfg.Host, srvCfg.Port),
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       time.Duration(srvCfg.TimeoutSec) * time.Second,
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		go func() {
			slog.Info("Starting server", "host", srvCfg.Host, "port", srvCfg.Port)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Server error", "error", err)
				cancel()
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

		select {
		case sig := <-sigChan:
			slog.Info("Received shutdown signal", "signal", sig.String())
		case <-ctx.Done():
		}

		slog.Info("Starting graceful shutdown", "timeout_sec", srvCfg.ShutdownTimeout)
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
			time.Duration(srvCfg.ShutdownTimeout)*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
			return err
		}
		slog.Info("Server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("host", "H", "localhost", "server host")
	serveCmd.Flags().IntP("port", "p", 8080, "server port")
	serveCmd.Flags().String("cors-origin", "*", "CORS allowed origin")
	serveCmd.Flags().Int("max-upload-size", 16, "maximum upload size in MB")
	serveCmd.Flags().Int("timeout", 30, "request processing timeout in seconds")
	serveCmd.Flags().Int("shutdown-timeout", 10, "graceful shutdown timeout in seconds")
	serveCmd.Flags().Int("store-limit", 100, "documents kept in memory (0 keeps all)")
	serveCmd.Flags().Float64("rate-limit-rps", 0, "per-client requests per second (0 disables limiting)")
	serveCmd.Flags().Int("rate-limit-burst", 20, "per-client burst size")
}
