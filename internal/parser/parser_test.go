package parser

import (
	"testing"

	"github.com/atikulmunna/skein/internal/model"
)

func TestParseLine(t *testing.T) {
	line := "2024-03-05 14:22:01,123 | ERROR |  ingest.worker  | failed to read | partial frame"
	entry, ok := ParseLine(line, "worker.log", 7)
	if !ok {
		t.Fatal("expected header line to match")
	}

	if entry.Timestamp != "2024-03-05 14:22:01,123" {
		t.Errorf("expected timestamp '2024-03-05 14:22:01,123', got %q", entry.Timestamp)
	}
	if entry.Level != model.LevelError {
		t.Errorf("expected level ERROR, got %s", entry.Level)
	}
	if entry.Module != "ingest.worker" {
		t.Errorf("expected module 'ingest.worker', got %q", entry.Module)
	}
	if entry.Message != "failed to read | partial frame" {
		t.Errorf("expected message to keep later pipes, got %q", entry.Message)
	}
	if entry.FileName != "worker.log" || entry.LineNumber != 7 {
		t.Errorf("expected worker.log:7, got %s:%d", entry.FileName, entry.LineNumber)
	}
	if entry.RawLine != line {
		t.Errorf("expected raw line to be preserved, got %q", entry.RawLine)
	}
}

func TestParseLineLevelKeptVerbatim(t *testing.T) {
	entry, ok := ParseLine("2024-03-05 14:22:01,123|warning|mod|msg", "a.log", 1)
	if !ok {
		t.Fatal("expected match without spaces around separators")
	}
	if entry.Level != "warning" {
		t.Errorf("expected level to be captured as-is, got %s", entry.Level)
	}
}

func TestParseLineNoMatch(t *testing.T) {
	lines := []string{
		"    at com.example.Foo.bar(Foo.java:42)",
		"2024-03-05 14:22:01 | INFO | mod | missing millis",
		"2024-03-05 14:22:01,123 | INFO | mod |",
		"2024-03-05 14:22:01,123 | IN FO | mod | spaced level",
		"",
	}
	for _, l := range lines {
		if _, ok := ParseLine(l, "a.log", 1); ok {
			t.Errorf("expected no match for %q", l)
		}
	}
}

func TestExtractMode(t *testing.T) {
	entry, _ := ParseLine("2024-03-05 14:22:01,123 | INFO | router | Job Routed To Extract Mode:  ocr_fast now", "a.log", 1)
	if entry.ExtractMode != "ocr_fast" {
		t.Errorf("expected extract mode ocr_fast, got %q", entry.ExtractMode)
	}

	entry, _ = ParseLine("2024-03-05 14:22:01,123 | INFO | router | nothing here", "a.log", 2)
	if entry.ExtractMode != "" {
		t.Errorf("expected no extract mode, got %q", entry.ExtractMode)
	}
}

func TestParseFileContinuation(t *testing.T) {
	file := model.SourceFile{
		Name:    "a.log",
		Content: "2024-01-01 00:00:00,000 | INFO | mod | hello\nstack line 1\nstack line 2",
	}

	entries := ParseFile(file)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Message != "hello\nstack line 1\nstack line 2" {
		t.Errorf("unexpected merged message %q", entries[0].Message)
	}
	want := "2024-01-01 00:00:00,000 | INFO | mod | hello\nstack line 1\nstack line 2"
	if entries[0].RawLine != want {
		t.Errorf("unexpected merged raw line %q", entries[0].RawLine)
	}
}

func TestParseFileDropsLeadingOrphans(t *testing.T) {
	file := model.SourceFile{
		Name: "b.log",
		Content: "orphan before any header\n" +
			"\n" +
			"   \n" +
			"2024-01-01 00:00:00,000 | INFO | mod | first\n" +
			"\n" +
			"2024-01-01 00:00:01,000 | WARN | mod | second\n" +
			"  continued\n",
	}

	entries := ParseFile(file)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].LineNumber != 4 || entries[1].LineNumber != 6 {
		t.Errorf("expected line numbers 4 and 6, got %d and %d", entries[0].LineNumber, entries[1].LineNumber)
	}
	if entries[0].Message != "first" {
		t.Errorf("blank line should not be merged, got %q", entries[0].Message)
	}
	if entries[1].Message != "second\n  continued" {
		t.Errorf("unexpected continuation %q", entries[1].Message)
	}
}

func TestParseFileOnlyOrphans(t *testing.T) {
	entries := ParseFile(model.SourceFile{Name: "c.log", Content: "no header\nanywhere\n"})
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}
