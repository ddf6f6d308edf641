package parser

import (
	"sort"
	"time"

	"github.com/atikulmunna/skein/internal/model"
	"github.com/atikulmunna/skein/internal/packet"
)

// Result is the output of ParseLogFiles.
type Result struct {
	Entries []model.LogEntry
	// Warnings holds non-fatal conditions, such as a packet pattern that failed
	// to compile. Entries are still returned, without packet annotations.
	Warnings []error
}

// ParseLogFiles runs the full pipeline: per-file reconstruction, a stable
// merge by timestamp across files, then packet correlation when enabled.
// Malformed content never fails the run.
func ParseLogFiles(files []model.SourceFile, opts packet.Options) Result {
	p := NewLineParser()

	entries := make([]model.LogEntry, 0)
	for _, f := range files {
		entries = append(entries, p.ParseFile(f)...)
	}

	SortByTimestamp(entries)

	var res Result
	if opts.Enabled {
		c, err := packet.New(opts)
		if err != nil {
			res.Warnings = append(res.Warnings, err)
		} else {
			c.Apply(entries)
		}
	}

	res.Entries = entries
	return res
}

// SortByTimestamp stable-sorts entries by parsed timestamp, ascending.
// Entries whose timestamp does not parse go last, in their original order.
func SortByTimestamp(entries []model.LogEntry) {
	type key struct {
		t  time.Time
		ok bool
	}
	keys := make([]key, len(entries))
	for i, e := range entries {
		keys[i].t, keys[i].ok = model.ParseTimestamp(e.Timestamp)
	}

	idx := make([]int, len(entries))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := keys[idx[a]], keys[idx[b]]
		if ka.ok != kb.ok {
			return ka.ok
		}
		return ka.ok && ka.t.Before(kb.t)
	})

	sorted := make([]model.LogEntry, len(entries))
	for i, j := range idx {
		sorted[i] = entries[j]
	}
	copy(entries, sorted)
}

// ExtractPacketIDs returns the distinct packet ids in entries, sorted.
func ExtractPacketIDs(entries []model.LogEntry) []string {
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, e := range entries {
		if e.PacketID == "" {
			continue
		}
		if _, ok := seen[e.PacketID]; !ok {
			seen[e.PacketID] = struct{}{}
			ids = append(ids, e.PacketID)
		}
	}
	sort.Strings(ids)
	return ids
}

// ExtractLogLevels returns the distinct levels in entries, sorted.
func ExtractLogLevels(entries []model.LogEntry) []string {
	seen := make(map[model.Level]struct{})
	levels := make([]string, 0)
	for _, e := range entries {
		if _, ok := seen[e.Level]; !ok {
			seen[e.Level] = struct{}{}
			levels = append(levels, string(e.Level))
		}
	}
	sort.Strings(levels)
	return levels
}
