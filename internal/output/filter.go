package output

import (
	"strings"

	"github.com/atikulmunna/skein/internal/model"
)

// Filter selects entries for display. Zero-value fields match everything.
// Filtering never changes the parsed data; it only hides entries.
type Filter struct {
	Levels map[string]bool // upper-cased
	Files  map[string]bool
	Packet string
	Search string // case-insensitive substring of message, module or raw line
}

// NewFilter builds a Filter from CLI-style values.
func NewFilter(levels, files []string, packet, search string) Filter {
	f := Filter{Packet: packet, Search: strings.ToLower(search)}
	for _, l := range levels {
		if l = strings.TrimSpace(l); l != "" {
			if f.Levels == nil {
				f.Levels = make(map[string]bool)
			}
			f.Levels[strings.ToUpper(l)] = true
		}
	}
	for _, name := range files {
		if name = strings.TrimSpace(name); name != "" {
			if f.Files == nil {
				f.Files = make(map[string]bool)
			}
			f.Files[name] = true
		}
	}
	return f
}

// Match reports whether e passes every set criterion.
func (f Filter) Match(e model.LogEntry) bool {
	if len(f.Levels) > 0 && !f.Levels[strings.ToUpper(string(e.Level))] {
		return false
	}
	if len(f.Files) > 0 && !f.Files[e.FileName] {
		return false
	}
	if f.Packet != "" && e.PacketID != f.Packet {
		return false
	}
	if f.Search != "" {
		hay := strings.ToLower(e.Message + "\x00" + e.Module + "\x00" + e.RawLine)
		if !strings.Contains(hay, f.Search) {
			return false
		}
	}
	return true
}

// Apply returns the entries that match, in order.
func (f Filter) Apply(entries []model.LogEntry) []model.LogEntry {
	out := make([]model.LogEntry, 0, len(entries))
	for _, e := range entries {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}
