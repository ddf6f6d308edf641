package settings

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	ozzo "github.com/go-ozzo/ozzo-validation"

	"github.com/atikulmunna/skein/internal/packet"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestUpdateValidate(t *testing.T) {
	tests := []struct {
		name    string
		update  Update
		wantErr string // JSON field expected in the error map; empty means valid
	}{
		{"empty update", Update{}, ""},
		{"valid patterns", Update{PacketStartPattern: strPtr("^BEGIN"), PacketEndPattern: strPtr("END$")}, ""},
		{"blank start", Update{PacketStartPattern: strPtr("   ")}, "packetStartPattern"},
		{"bad end regex", Update{PacketEndPattern: strPtr("(unclosed")}, "packetEndPattern"},
		{"id without group", Update{PacketIDPattern: strPtr(`job_id=\w+`)}, "packetIdPattern"},
		{"blank id means default", Update{PacketIDPattern: strPtr("")}, ""},
		{"unknown strategy", Update{Strategy: strPtr("random")}, "strategy"},
		{"counter strategy", Update{Strategy: strPtr("counter")}, ""},
		{"mixed case strategy", Update{Strategy: strPtr(" Counter ")}, ""},
		{"blank strategy", Update{Strategy: strPtr("  ")}, "strategy"},
	}

	for _, tt := range tests {
		err := tt.update.Validate()
		if tt.wantErr == "" {
			if err != nil {
				t.Errorf("%s: expected no error, got %v", tt.name, err)
			}
			continue
		}
		var errs ozzo.Errors
		if !errors.As(err, &errs) {
			t.Errorf("%s: expected ozzo.Errors, got %v", tt.name, err)
			continue
		}
		if _, ok := errs[tt.wantErr]; !ok {
			t.Errorf("%s: expected error on %s, got %v", tt.name, tt.wantErr, errs)
		}
	}
}

func TestUpdateApply(t *testing.T) {
	base := Defaults()
	got := Update{EnablePackets: boolPtr(false), Strategy: strPtr(" Counter ")}.Apply(base)

	if got.EnablePackets {
		t.Error("expected packets disabled")
	}
	if got.Strategy != "counter" {
		t.Errorf("expected normalised strategy 'counter', got %q", got.Strategy)
	}
	if got.PacketStartPattern != base.PacketStartPattern {
		t.Errorf("expected untouched start pattern, got %q", got.PacketStartPattern)
	}
}

func TestPacketOptions(t *testing.T) {
	opts := Defaults().PacketOptions()
	if !opts.Enabled || opts.Strategy != packet.StrategyIdentifier || opts.IDPattern != packet.DefaultIDPattern {
		t.Errorf("unexpected default options %+v", opts)
	}

	s := Defaults()
	s.Strategy = "bogus"
	if got := s.PacketOptions().Strategy; got != packet.StrategyIdentifier {
		t.Errorf("expected identifier fallback, got %s", got)
	}
}

func TestFileStoreSeedAndUpdate(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "settings.json")

	store, err := NewFileStore(path, Defaults())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	got, _ := store.Get(ctx)
	if got.ID != 1 || got.PacketStartPattern != "Received message on" {
		t.Errorf("expected seeded defaults, got %+v", got)
	}

	updated, err := store.Update(ctx, Update{PacketEndPattern: strPtr("Done")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.PacketEndPattern != "Done" {
		t.Errorf("expected end pattern Done, got %q", updated.PacketEndPattern)
	}

	// A second store over the same file sees the persisted update.
	reopened, err := NewFileStore(path, Defaults())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, _ = reopened.Get(ctx)
	if got.PacketEndPattern != "Done" {
		t.Errorf("expected persisted end pattern, got %q", got.PacketEndPattern)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should be renamed away")
	}
}

func TestFileStoreRejectsInvalidUpdate(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "settings.json"), Defaults())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if _, err := store.Update(ctx, Update{PacketStartPattern: strPtr("")}); err == nil {
		t.Fatal("expected validation error")
	}
	got, _ := store.Get(ctx)
	if got.PacketStartPattern != "Received message on" {
		t.Errorf("invalid update must not change settings, got %q", got.PacketStartPattern)
	}
}

func TestSQLStoreSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "settings.db")

	store, err := Open(Options{Driver: DriverSQLite, Path: path, Seed: Defaults()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	got, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.EnablePackets || got.Strategy != "identifier" {
		t.Errorf("expected seeded defaults, got %+v", got)
	}

	updated, err := store.Update(ctx, Update{EnablePackets: boolPtr(false), Strategy: strPtr("counter")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.EnablePackets || updated.Strategy != "counter" {
		t.Errorf("unexpected updated settings %+v", updated)
	}
	if updated.ID != got.ID {
		t.Errorf("expected update in place on row %d, got row %d", got.ID, updated.ID)
	}

	got, _ = store.Get(ctx)
	if got.EnablePackets {
		t.Error("expected false to be persisted")
	}
}

func TestSQLStoreSeedsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.db")

	first, err := OpenSQL(DriverSQLite, path, "", Defaults())
	if err != nil {
		t.Fatalf("OpenSQL: %v", err)
	}
	if _, err := first.Update(context.Background(), Update{PacketStartPattern: strPtr("BEGIN")}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	first.Close()

	second, err := OpenSQL(DriverSQLite, path, "", Defaults())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	got, _ := second.Get(context.Background())
	if got.PacketStartPattern != "BEGIN" {
		t.Errorf("reopening must not reseed, got %q", got.PacketStartPattern)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(Options{Driver: "mongo"}); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestFileStoreNormalizesStrategy(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "settings.json"), Defaults())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	got, err := store.Update(ctx, Update{Strategy: strPtr("Counter")})
	if err != nil {
		t.Fatalf("expected mixed case strategy to be accepted, got %v", err)
	}
	if got.Strategy != "counter" {
		t.Errorf("expected stored strategy 'counter', got %q", got.Strategy)
	}
	if got.PacketOptions().Strategy != packet.StrategyCounter {
		t.Errorf("expected counter options, got %q", got.PacketOptions().Strategy)
	}
}
