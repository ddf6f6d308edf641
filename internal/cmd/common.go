package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/viper"

	"github.com/atikulmunna/skein/internal/config"
	"github.com/atikulmunna/skein/internal/logfile"
	"github.com/atikulmunna/skein/internal/service"
	"github.com/atikulmunna/skein/internal/settings"
)

// env bundles what every subcommand needs.
type env struct {
	cfg   config.Config
	repo  *logfile.Repository
	store settings.Store
	svc   *service.LogService
}

func setup() (*env, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	store, err := settings.Open(cfg.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("open settings store: %w", err)
	}
	repo := logfile.New(cfg.Logs.Dir, cfg.Logs.Pattern)
	return &env{
		cfg:   cfg,
		repo:  repo,
		store: store,
		svc:   service.New(repo, store, cfg.DurationMode()),
	}, nil
}

func (e *env) Close() error {
	return e.store.Close()
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func jsonOutput() bool {
	return strings.EqualFold(outputFmt, "json")
}

func printWarnings(w io.Writer, warnings []string) {
	for _, msg := range warnings {
		fmt.Fprintf(w, "warning: %s\n", msg)
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

var stdout io.Writer = os.Stdout
