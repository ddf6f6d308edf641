// Package settings persists the packet tracking configuration that the log
// service applies to every parse run.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ozzo "github.com/go-ozzo/ozzo-validation"

	"github.com/atikulmunna/skein/internal/packet"
)

// Settings is the stored packet tracking configuration.
type Settings struct {
	ID                 uint      `json:"id"`
	EnablePackets      bool      `json:"enablePackets"`
	PacketStartPattern string    `json:"packetStartPattern"`
	PacketEndPattern   string    `json:"packetEndPattern"`
	PacketIDPattern    string    `json:"packetIdPattern"`
	Strategy           string    `json:"strategy"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Defaults returns the settings used when nothing has been stored yet.
func Defaults() Settings {
	return Settings{
		EnablePackets:      true,
		PacketStartPattern: "Received message on",
		PacketEndPattern:   "Processed OK",
		PacketIDPattern:    packet.DefaultIDPattern,
		Strategy:           string(packet.StrategyIdentifier),
	}
}

// PacketOptions converts the stored settings into correlator options.
// An unrecognised strategy falls back to the identifier strategy.
func (s Settings) PacketOptions() packet.Options {
	strategy, err := packet.ParseStrategy(s.Strategy)
	if err != nil {
		strategy = packet.StrategyIdentifier
	}
	return packet.Options{
		Enabled:      s.EnablePackets,
		Strategy:     strategy,
		StartPattern: s.PacketStartPattern,
		EndPattern:   s.PacketEndPattern,
		IDPattern:    s.PacketIDPattern,
	}
}

// Update is a partial settings change. Nil fields are left untouched.
type Update struct {
	EnablePackets      *bool   `json:"enablePackets"`
	PacketStartPattern *string `json:"packetStartPattern"`
	PacketEndPattern   *string `json:"packetEndPattern"`
	PacketIDPattern    *string `json:"packetIdPattern"`
	Strategy           *string `json:"strategy"`
}

// Validate checks the fields that are present. The returned error is an
// ozzo.Errors keyed by JSON field name.
func (u Update) Validate() error {
	return ozzo.ValidateStruct(&u,
		ozzo.Field(&u.PacketStartPattern, ozzo.By(patternRule("start"))),
		ozzo.Field(&u.PacketEndPattern, ozzo.By(patternRule("end"))),
		ozzo.Field(&u.PacketIDPattern, ozzo.By(idPatternRule)),
		ozzo.Field(&u.Strategy, ozzo.By(strategyRule)),
	)
}

// Apply returns s with the present fields of u applied.
func (u Update) Apply(s Settings) Settings {
	if u.EnablePackets != nil {
		s.EnablePackets = *u.EnablePackets
	}
	if u.PacketStartPattern != nil {
		s.PacketStartPattern = *u.PacketStartPattern
	}
	if u.PacketEndPattern != nil {
		s.PacketEndPattern = *u.PacketEndPattern
	}
	if u.PacketIDPattern != nil {
		s.PacketIDPattern = *u.PacketIDPattern
	}
	if u.Strategy != nil {
		s.Strategy = normalizeStrategy(*u.Strategy)
	}
	return s
}

func normalizeStrategy(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// strategyRule accepts a strategy name in any case, matching what Apply stores.
func strategyRule(value interface{}) error {
	v, isNil := ozzo.Indirect(value)
	if isNil {
		return nil
	}
	name, _ := v.(string)
	switch packet.Strategy(normalizeStrategy(name)) {
	case packet.StrategyCounter, packet.StrategyIdentifier:
		return nil
	}
	return fmt.Errorf("must be %q or %q", packet.StrategyCounter, packet.StrategyIdentifier)
}

func patternRule(field string) ozzo.RuleFunc {
	return func(value interface{}) error {
		v, isNil := ozzo.Indirect(value)
		if isNil {
			return nil
		}
		pattern, _ := v.(string)
		if strings.TrimSpace(pattern) == "" {
			return errors.New("cannot be empty")
		}
		if _, err := packet.CompilePattern(field, pattern); err != nil {
			return errors.New("is not a valid regular expression")
		}
		return nil
	}
}

func idPatternRule(value interface{}) error {
	v, isNil := ozzo.Indirect(value)
	if isNil {
		return nil
	}
	pattern, _ := v.(string)
	if strings.TrimSpace(pattern) == "" {
		return nil
	}
	if _, err := packet.CompileIDPattern(pattern); err != nil {
		var pe *packet.PatternError
		if errors.As(err, &pe) {
			return pe.Err
		}
		return err
	}
	return nil
}

// Store reads and writes the current settings.
type Store interface {
	Get(ctx context.Context) (Settings, error)
	Update(ctx context.Context, u Update) (Settings, error)
	Close() error
}

// Backend names accepted by Open.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options selects and configures a Store backend.
type Options struct {
	Driver string
	Path   string // file and sqlite backends
	DSN    string // postgres backend
	Seed   Settings
}

// Open creates the Store for opts.Driver. Seed is written when the backend
// holds no settings yet.
func Open(opts Options) (Store, error) {
	switch opts.Driver {
	case DriverFile:
		return NewFileStore(opts.Path, opts.Seed)
	case DriverSQLite, DriverPostgres, "":
		driver := opts.Driver
		if driver == "" {
			driver = DriverSQLite
		}
		return OpenSQL(driver, opts.Path, opts.DSN, opts.Seed)
	default:
		return nil, fmt.Errorf("unknown settings driver %q", opts.Driver)
	}
}
