package aggregator

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/atikulmunna/skein/internal/model"
)

// Mode selects how packet durations are derived.
type Mode string

const (
	// ModeFlags pairs each isPacketStart with the next isPacketEnd of the same
	// packet id in the same file. Packets that never close get no duration.
	ModeFlags Mode = "flags"

	// ModeSpan measures from the first to the last entry carrying a packet id,
	// ignoring start/end flags.
	ModeSpan Mode = "span"
)

// ParseMode converts a configuration string into a Mode. Empty selects ModeFlags.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeFlags, "":
		return ModeFlags, nil
	case ModeSpan:
		return ModeSpan, nil
	default:
		return "", fmt.Errorf("unknown duration mode %q (want %q or %q)", s, ModeFlags, ModeSpan)
	}
}

// mark is a timestamp seen on a packet entry.
type mark struct {
	timestamp string
	time      time.Time
	ok        bool
	fileName  string
}

type packetKey struct {
	fileName string
	packetID string
}

// counter keeps label counts in first-seen order.
type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(label string) {
	if _, ok := c.counts[label]; !ok {
		c.order = append(c.order, label)
	}
	c.counts[label]++
}

// sorted returns counts by descending count; ties keep first-seen order.
func (c *counter) sorted() []model.SummaryCount {
	out := make([]model.SummaryCount, len(c.order))
	for i, label := range c.order {
		out[i] = model.SummaryCount{Label: label, Count: c.counts[label]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// Aggregator accumulates a LogSummary over a timestamp-sorted entry sequence
// in a single pass. It is not safe for concurrent use; build one per run.
type Aggregator struct {
	mode     Mode
	total    int
	levels   *counter
	files    *counter
	earliest time.Time
	latest   time.Time
	hasTime  bool

	packetOrder []string
	tags        map[string]map[string]struct{}

	// ModeSpan
	first map[string]mark
	last  map[string]mark

	// ModeFlags
	keys      map[packetKey]struct{}
	open      map[packetKey]mark
	closed    map[packetKey]bool
	durations []model.PacketDurationSummary
}

// New creates an empty Aggregator.
func New(mode Mode) *Aggregator {
	if mode == "" {
		mode = ModeFlags
	}
	return &Aggregator{
		mode:   mode,
		levels: newCounter(),
		files:  newCounter(),
		tags:   make(map[string]map[string]struct{}),
		first:  make(map[string]mark),
		last:   make(map[string]mark),
		keys:   make(map[packetKey]struct{}),
		open:   make(map[packetKey]mark),
		closed: make(map[packetKey]bool),
	}
}

// Build aggregates entries into a LogSummary.
func Build(entries []model.LogEntry, mode Mode) model.LogSummary {
	a := New(mode)
	for _, e := range entries {
		a.Add(e)
	}
	return a.Snapshot()
}

// Add records one entry.
func (a *Aggregator) Add(e model.LogEntry) {
	a.total++
	a.levels.add(string(e.Level))
	a.files.add(e.FileName)

	t, ok := model.ParseTimestamp(e.Timestamp)
	if ok {
		if !a.hasTime || t.Before(a.earliest) {
			a.earliest = t
		}
		if !a.hasTime || t.After(a.latest) {
			a.latest = t
		}
		a.hasTime = true
	}

	if e.PacketID == "" {
		return
	}
	m := mark{timestamp: e.Timestamp, time: t, ok: ok, fileName: e.FileName}

	if _, seen := a.tags[e.PacketID]; !seen {
		a.packetOrder = append(a.packetOrder, e.PacketID)
		a.tags[e.PacketID] = make(map[string]struct{})
	}
	if e.ExtractMode != "" {
		a.tags[e.PacketID][e.ExtractMode] = struct{}{}
	}

	switch a.mode {
	case ModeSpan:
		if _, seen := a.first[e.PacketID]; !seen {
			a.first[e.PacketID] = m
		}
		a.last[e.PacketID] = m

	case ModeFlags:
		key := packetKey{fileName: e.FileName, packetID: e.PacketID}
		a.keys[key] = struct{}{}
		if e.IsPacketStart {
			a.open[key] = m
		}
		if e.IsPacketEnd {
			start, isOpen := a.open[key]
			if !isOpen {
				return
			}
			delete(a.open, key)
			if a.closed[key] {
				return
			}
			a.closed[key] = true
			a.durations = append(a.durations, model.PacketDurationSummary{
				PacketID:       e.PacketID,
				StartTimestamp: start.timestamp,
				EndTimestamp:   m.timestamp,
				DurationMs:     markDuration(start, m),
				FileName:       start.fileName,
			})
		}
	}
}

// Snapshot returns the summary of everything added so far.
func (a *Aggregator) Snapshot() model.LogSummary {
	var durations []model.PacketDurationSummary
	total := len(a.packetOrder)
	switch a.mode {
	case ModeSpan:
		durations = make([]model.PacketDurationSummary, 0, len(a.packetOrder))
		for _, id := range a.packetOrder {
			start, end := a.first[id], a.last[id]
			durations = append(durations, model.PacketDurationSummary{
				PacketID:       id,
				StartTimestamp: start.timestamp,
				EndTimestamp:   end.timestamp,
				DurationMs:     markDuration(start, end),
				FileName:       start.fileName,
			})
		}
	default:
		// Packets are file-scoped here, so count (file, id) pairs.
		total = len(a.keys)
		durations = make([]model.PacketDurationSummary, len(a.durations))
		copy(durations, a.durations)
	}

	for i := range durations {
		durations[i].Tags = a.sortedTags(durations[i].PacketID)
	}

	summary := model.LogSummary{
		TotalEntries:    a.total,
		TotalFiles:      len(a.files.order),
		Levels:          a.levels.sorted(),
		Files:           a.files.sorted(),
		PacketStats:     packetStats(total, durations),
		PacketDurations: durations,
	}
	if a.hasTime {
		summary.TimeRange = &model.TimeRange{
			Start:      model.FormatTimestamp(a.earliest),
			End:        model.FormatTimestamp(a.latest),
			DurationMs: model.DurationMs(a.earliest, a.latest),
		}
	}
	return summary
}

func (a *Aggregator) sortedTags(id string) []string {
	tags := make([]string, 0, len(a.tags[id]))
	for t := range a.tags[id] {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

func markDuration(start, end mark) int64 {
	if !start.ok || !end.ok {
		return 0
	}
	return model.DurationMs(start.time, end.time)
}

func packetStats(total int, durations []model.PacketDurationSummary) model.PacketStats {
	stats := model.PacketStats{TotalPackets: total, PacketsWithDuration: len(durations)}
	if len(durations) == 0 {
		return stats
	}

	lo, hi := durations[0].DurationMs, durations[0].DurationMs
	var sum int64
	for _, d := range durations {
		if d.DurationMs < lo {
			lo = d.DurationMs
		}
		if d.DurationMs > hi {
			hi = d.DurationMs
		}
		sum += d.DurationMs
	}
	avg := float64(sum) / float64(len(durations))

	stats.MinDurationMs = &lo
	stats.MaxDurationMs = &hi
	stats.AvgDurationMs = &avg
	return stats
}
