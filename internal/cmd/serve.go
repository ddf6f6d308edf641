package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/atikulmunna/skein/internal/hub"
	"github.com/atikulmunna/skein/internal/server"
	"github.com/atikulmunna/skein/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API and live summary feed",
	Long: `Start the HTTP API (/api/logs, /api/summary, /api/settings) and a
websocket feed (/ws) that pushes a fresh summary whenever a log file in the
directory changes.

Examples:
  skein serve --port 8080 --logs-dir /var/log/app`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntP("port", "p", 8080, "HTTP listen port")
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// --- Set up context with graceful shutdown ---
	ctx, cancel := signalContext()
	defer cancel()

	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	// --- Watch the logs directory when it exists ---
	var events <-chan watcher.Event
	if e.repo.DirectoryExists() {
		w, err := watcher.New(e.cfg.Logs.Dir, e.cfg.Logs.Pattern)
		if err != nil {
			return fmt.Errorf("failed to create watcher: %w", err)
		}
		events = w.Events
		go w.Start(ctx)
		log.Info().Str("dir", e.cfg.Logs.Dir).Int("dirs", len(w.Dirs())).Msg("watching logs directory")
	} else {
		log.Warn().Str("dir", e.cfg.Logs.Dir).Msg("logs directory not found; live updates disabled")
	}

	// --- Start pipeline ---
	h := hub.New(events, e.svc)
	go h.Start(ctx)

	srv := server.New(e.svc, e.store, h, server.Options{
		Port:           e.cfg.Server.Port,
		AllowedOrigins: e.cfg.Server.AllowedOrigins,
	})
	err = srv.Start(ctx)
	log.Info().Msg("skein shutting down")
	return err
}
