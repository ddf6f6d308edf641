package aggregator

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/atikulmunna/skein/internal/model"
)

func e(file, ts, level, packetID string) model.LogEntry {
	return model.LogEntry{Timestamp: ts, Level: model.Level(level), FileName: file, PacketID: packetID}
}

func TestBuildEmpty(t *testing.T) {
	s := Build(nil, ModeFlags)

	if s.TotalEntries != 0 || s.TotalFiles != 0 {
		t.Errorf("expected zero totals, got %d entries / %d files", s.TotalEntries, s.TotalFiles)
	}
	if s.TimeRange != nil {
		t.Errorf("expected no time range, got %+v", s.TimeRange)
	}
	if s.PacketStats.TotalPackets != 0 || s.PacketStats.MinDurationMs != nil {
		t.Errorf("expected empty packet stats, got %+v", s.PacketStats)
	}
	if s.Levels == nil || s.Files == nil || s.PacketDurations == nil {
		t.Error("expected empty, non-nil slices for JSON output")
	}
}

func TestLevelAndFileCounts(t *testing.T) {
	entries := []model.LogEntry{
		e("a.log", "2024-01-01 10:00:00,000", "INFO", ""),
		e("b.log", "2024-01-01 10:00:01,000", "ERROR", ""),
		e("b.log", "2024-01-01 10:00:02,000", "WARN", ""),
		e("a.log", "2024-01-01 10:00:03,000", "ERROR", ""),
		e("c.log", "2024-01-01 10:00:04,000", "INFO", ""),
		e("c.log", "2024-01-01 10:00:05,000", "DEBUG", ""),
	}
	s := Build(entries, ModeFlags)

	wantLevels := []model.SummaryCount{{Label: "INFO", Count: 2}, {Label: "ERROR", Count: 2}, {Label: "WARN", Count: 1}, {Label: "DEBUG", Count: 1}}
	if diff := cmp.Diff(wantLevels, s.Levels); diff != "" {
		t.Errorf("levels (-want +got):\n%s", diff)
	}
	wantFiles := []model.SummaryCount{{Label: "a.log", Count: 2}, {Label: "b.log", Count: 2}, {Label: "c.log", Count: 2}}
	if diff := cmp.Diff(wantFiles, s.Files); diff != "" {
		t.Errorf("files (-want +got):\n%s", diff)
	}
	if s.TotalEntries != 6 || s.TotalFiles != 3 {
		t.Errorf("expected 6 entries in 3 files, got %d / %d", s.TotalEntries, s.TotalFiles)
	}
}

func TestTimeRangeSkipsUnparsable(t *testing.T) {
	entries := []model.LogEntry{
		e("a.log", "2024-01-01 10:00:00,250", "INFO", ""),
		e("a.log", "2024-01-01 10:01:00,000", "INFO", ""),
		e("a.log", "not a time", "INFO", ""),
	}
	s := Build(entries, ModeFlags)

	want := &model.TimeRange{Start: "2024-01-01 10:00:00,250", End: "2024-01-01 10:01:00,000", DurationMs: 59750}
	if diff := cmp.Diff(want, s.TimeRange); diff != "" {
		t.Errorf("time range (-want +got):\n%s", diff)
	}
}

func TestFlagModeDurations(t *testing.T) {
	start := func(file, ts, id string) model.LogEntry {
		x := e(file, ts, "INFO", id)
		x.IsPacketStart = true
		return x
	}
	end := func(file, ts, id string) model.LogEntry {
		x := e(file, ts, "INFO", id)
		x.IsPacketEnd = true
		return x
	}

	tagged := e("a.log", "2024-01-01 10:00:00,500", "INFO", "j1")
	tagged.ExtractMode = "ocr"
	tagged2 := e("a.log", "2024-01-01 10:00:00,600", "INFO", "j1")
	tagged2.ExtractMode = "csv"

	entries := []model.LogEntry{
		start("a.log", "2024-01-01 10:00:00,000", "j1"),
		tagged,
		tagged2,
		start("b.log", "2024-01-01 10:00:01,000", "j2"), // never closed
		end("a.log", "2024-01-01 10:00:02,000", "j1"),
		e("a.log", "2024-01-01 10:00:03,000", "INFO", "j3"), // no flags at all
		start("a.log", "2024-01-01 10:00:04,000", "j1"),   // reopened after close
		end("a.log", "2024-01-01 10:00:09,000", "j1"),
	}
	s := Build(entries, ModeFlags)

	want := []model.PacketDurationSummary{{
		PacketID:       "j1",
		StartTimestamp: "2024-01-01 10:00:00,000",
		EndTimestamp:   "2024-01-01 10:00:02,000",
		DurationMs:     2000,
		FileName:       "a.log",
		Tags:           []string{"csv", "ocr"},
	}}
	if diff := cmp.Diff(want, s.PacketDurations); diff != "" {
		t.Errorf("durations (-want +got):\n%s", diff)
	}
	if s.PacketStats.TotalPackets != 3 {
		t.Errorf("expected 3 packets, got %d", s.PacketStats.TotalPackets)
	}
	if s.PacketStats.PacketsWithDuration != 1 {
		t.Errorf("expected 1 packet with duration, got %d", s.PacketStats.PacketsWithDuration)
	}
	if *s.PacketStats.MinDurationMs != 2000 || *s.PacketStats.MaxDurationMs != 2000 || *s.PacketStats.AvgDurationMs != 2000 {
		t.Errorf("unexpected stats %+v", s.PacketStats)
	}
}

func TestFlagModeAbandonedStart(t *testing.T) {
	first := e("a.log", "2024-01-01 10:00:00,000", "INFO", "packet_1_x")
	first.IsPacketStart = true
	second := e("a.log", "2024-01-01 10:00:01,000", "INFO", "packet_2_y")
	second.IsPacketStart = true
	closing := e("a.log", "2024-01-01 10:00:04,000", "INFO", "packet_2_y")
	closing.IsPacketEnd = true

	s := Build([]model.LogEntry{first, second, closing}, ModeFlags)

	if s.PacketStats.TotalPackets != 2 {
		t.Errorf("abandoned packet should still count, got %d packets", s.PacketStats.TotalPackets)
	}
	if len(s.PacketDurations) != 1 || s.PacketDurations[0].PacketID != "packet_2_y" || s.PacketDurations[0].DurationMs != 3000 {
		t.Errorf("unexpected durations %+v", s.PacketDurations)
	}
}

func TestFlagModeSameIDInTwoFiles(t *testing.T) {
	flagged := func(file, ts string, start bool) model.LogEntry {
		x := e(file, ts, "INFO", "J1")
		x.IsPacketStart = start
		x.IsPacketEnd = !start
		return x
	}
	entries := []model.LogEntry{
		flagged("a.log", "2024-01-01 10:00:00,000", true),
		flagged("b.log", "2024-01-01 10:00:00,500", true),
		flagged("a.log", "2024-01-01 10:00:01,000", false),
		flagged("b.log", "2024-01-01 10:00:03,000", false),
	}
	s := Build(entries, ModeFlags)

	if s.PacketStats.TotalPackets != 2 {
		t.Errorf("expected 2 packets (one per file), got %d", s.PacketStats.TotalPackets)
	}
	if s.PacketStats.PacketsWithDuration != 2 {
		t.Errorf("expected 2 packets with duration, got %d", s.PacketStats.PacketsWithDuration)
	}
	if s.PacketStats.PacketsWithDuration > s.PacketStats.TotalPackets {
		t.Errorf("closed packets exceed total: %+v", s.PacketStats)
	}
	if len(s.PacketDurations) != 2 || s.PacketDurations[0].DurationMs != 1000 || s.PacketDurations[1].DurationMs != 2500 {
		t.Errorf("unexpected durations %+v", s.PacketDurations)
	}
}

func TestSpanModeDurations(t *testing.T) {
	entries := []model.LogEntry{
		e("a.log", "2024-01-01 10:00:00,000", "INFO", "j1"),
		e("a.log", "2024-01-01 10:00:01,000", "INFO", "j2"),
		e("a.log", "2024-01-01 10:00:05,000", "INFO", "j1"),
	}
	s := Build(entries, ModeSpan)

	if len(s.PacketDurations) != 2 {
		t.Fatalf("expected 2 durations, got %d", len(s.PacketDurations))
	}
	if s.PacketDurations[0].PacketID != "j1" || s.PacketDurations[0].DurationMs != 5000 {
		t.Errorf("unexpected j1 duration %+v", s.PacketDurations[0])
	}
	if s.PacketDurations[1].DurationMs != 0 {
		t.Errorf("single-entry packet should have zero duration, got %d", s.PacketDurations[1].DurationMs)
	}
	if *s.PacketStats.AvgDurationMs != 2500 {
		t.Errorf("expected avg 2500, got %v", *s.PacketStats.AvgDurationMs)
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(""); err != nil || m != ModeFlags {
		t.Errorf("expected flags default, got %q (%v)", m, err)
	}
	if m, err := ParseMode("SPAN"); err != nil || m != ModeSpan {
		t.Errorf("expected span, got %q (%v)", m, err)
	}
	if _, err := ParseMode("median"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
