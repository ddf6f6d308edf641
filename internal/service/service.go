// Package service ties the log source, the settings store and the parsing
// pipeline together for the CLI and HTTP front ends.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/atikulmunna/skein/internal/aggregator"
	"github.com/atikulmunna/skein/internal/model"
	"github.com/atikulmunna/skein/internal/palette"
	"github.com/atikulmunna/skein/internal/parser"
	"github.com/atikulmunna/skein/internal/settings"
)

var (
	// ErrDirectoryNotFound is returned when the logs directory is missing.
	ErrDirectoryNotFound = errors.New("logs directory not found")

	// ErrNoLogFiles is returned when the directory holds no matching files.
	ErrNoLogFiles = errors.New("no log files found")
)

// FileSource supplies the raw files for one parse run.
type FileSource interface {
	DirectoryExists() bool
	ReadLogFiles(ctx context.Context) ([]model.SourceFile, error)
}

// SettingsReader supplies the packet settings for one parse run.
type SettingsReader interface {
	Get(ctx context.Context) (settings.Settings, error)
}

// PacketSettings is the subset of settings echoed back with parsed logs.
type PacketSettings struct {
	EnablePackets      bool   `json:"enablePackets"`
	PacketStartPattern string `json:"packetStartPattern"`
	PacketEndPattern   string `json:"packetEndPattern"`
	PacketIDPattern    string `json:"packetIdPattern"`
	Strategy           string `json:"strategy"`
}

// LogsResponse is the full parse result for a directory.
type LogsResponse struct {
	Logs         []model.LogEntry `json:"logs"`
	TotalEntries int              `json:"totalEntries"`
	Files        []string         `json:"files"`
	Packets      []string         `json:"packets"`
	Levels       []string         `json:"levels"`
	Settings     PacketSettings   `json:"settings"`
	Warnings     []string         `json:"warnings,omitempty"`
}

// SummaryResponse is the aggregated view of a directory.
type SummaryResponse struct {
	Summary      model.LogSummary  `json:"summary"`
	PacketColors map[string]string `json:"packetColors"`
	Warnings     []string          `json:"warnings,omitempty"`
}

// LogService runs the parse pipeline on demand. Every call re-reads the
// files and settings, so results always reflect the current directory.
type LogService struct {
	files    FileSource
	settings SettingsReader
	mode     aggregator.Mode
}

// New creates a LogService.
func New(files FileSource, store SettingsReader, mode aggregator.Mode) *LogService {
	return &LogService{files: files, settings: store, mode: mode}
}

// run is one pass of read, parse and correlate.
type run struct {
	files    []string
	settings settings.Settings
	result   parser.Result
}

func (s *LogService) run(ctx context.Context) (run, error) {
	if !s.files.DirectoryExists() {
		return run{}, ErrDirectoryNotFound
	}

	files, err := s.files.ReadLogFiles(ctx)
	if err != nil {
		return run{}, fmt.Errorf("read log files: %w", err)
	}
	if len(files) == 0 {
		return run{}, ErrNoLogFiles
	}

	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return run{}, fmt.Errorf("load settings: %w", err)
	}

	res := parser.ParseLogFiles(files, cfg.PacketOptions())
	for _, w := range res.Warnings {
		log.Warn().Err(w).Msg("packet correlation")
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	log.Debug().Int("files", len(files)).Int("entries", len(res.Entries)).Msg("parsed logs")

	return run{files: names, settings: cfg, result: res}, nil
}

// Logs parses the directory and returns every entry with its packet annotations.
func (s *LogService) Logs(ctx context.Context) (LogsResponse, error) {
	r, err := s.run(ctx)
	if err != nil {
		return LogsResponse{}, err
	}

	return LogsResponse{
		Logs:         r.result.Entries,
		TotalEntries: len(r.result.Entries),
		Files:        r.files,
		Packets:      parser.ExtractPacketIDs(r.result.Entries),
		Levels:       parser.ExtractLogLevels(r.result.Entries),
		Settings: PacketSettings{
			EnablePackets:      r.settings.EnablePackets,
			PacketStartPattern: r.settings.PacketStartPattern,
			PacketEndPattern:   r.settings.PacketEndPattern,
			PacketIDPattern:    r.settings.PacketIDPattern,
			Strategy:           r.settings.Strategy,
		},
		Warnings: warningStrings(r.result.Warnings),
	}, nil
}

// Summary parses the directory and returns its aggregate statistics.
func (s *LogService) Summary(ctx context.Context) (SummaryResponse, error) {
	r, err := s.run(ctx)
	if err != nil {
		return SummaryResponse{}, err
	}

	return SummaryResponse{
		Summary:      aggregator.Build(r.result.Entries, s.mode),
		PacketColors: palette.ColorMap(parser.ExtractPacketIDs(r.result.Entries)),
		Warnings:     warningStrings(r.result.Warnings),
	}, nil
}

func warningStrings(errs []error) []string {
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}
