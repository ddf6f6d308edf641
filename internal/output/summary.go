package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/atikulmunna/skein/internal/palette"
	"github.com/atikulmunna/skein/internal/service"
)

var styleHeading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))

// WriteSummary renders a summary as headed tables of levels, files and packets.
func WriteSummary(w io.Writer, resp service.SummaryResponse, color bool) error {
	s := resp.Summary
	heading := func(text string) string {
		if color {
			return styleHeading.Render(text)
		}
		return text
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", heading("Overview"))
	fmt.Fprintf(&sb, "  entries: %d\n  files:   %d\n", s.TotalEntries, s.TotalFiles)
	if s.TimeRange != nil {
		fmt.Fprintf(&sb, "  range:   %s → %s (%s)\n", s.TimeRange.Start, s.TimeRange.End, formatMs(s.TimeRange.DurationMs))
	}

	rows := make([][]string, 0, len(s.Levels))
	for _, c := range s.Levels {
		rows = append(rows, []string{c.Label, strconv.Itoa(c.Count)})
	}
	fmt.Fprintf(&sb, "\n%s\n%s\n", heading("Levels"), newTable("LEVEL", "COUNT").Rows(rows...).String())

	rows = make([][]string, 0, len(s.Files))
	for _, c := range s.Files {
		rows = append(rows, []string{c.Label, strconv.Itoa(c.Count)})
	}
	fmt.Fprintf(&sb, "\n%s\n%s\n", heading("Files"), newTable("FILE", "ENTRIES").Rows(rows...).String())

	ps := s.PacketStats
	fmt.Fprintf(&sb, "\n%s\n", heading("Packets"))
	fmt.Fprintf(&sb, "  total: %d  with duration: %d\n", ps.TotalPackets, ps.PacketsWithDuration)
	if ps.MinDurationMs != nil && ps.MaxDurationMs != nil && ps.AvgDurationMs != nil {
		fmt.Fprintf(&sb, "  min: %s  max: %s  avg: %s\n",
			formatMs(*ps.MinDurationMs), formatMs(*ps.MaxDurationMs), formatMs(int64(*ps.AvgDurationMs+0.5)))
	}

	if len(s.PacketDurations) > 0 {
		dt := newTable("PACKET", "FILE", "START", "END", "DURATION", "TAGS")
		for _, d := range s.PacketDurations {
			id := d.PacketID
			if c, ok := resp.PacketColors[id]; ok && color {
				id = colorize(id, c)
			}
			dt.Row(id, d.FileName, d.StartTimestamp, d.EndTimestamp, formatMs(d.DurationMs), strings.Join(d.Tags, ","))
		}
		fmt.Fprintf(&sb, "%s\n", dt.String())
	}

	for _, warn := range resp.Warnings {
		fmt.Fprintf(&sb, "\nwarning: %s\n", warn)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
}

func colorize(text, hsl string) string {
	hex, err := palette.Hex(hsl)
	if err != nil {
		return text
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(text)
}

// formatMs prints a millisecond count as a short human duration.
func formatMs(ms int64) string {
	switch {
	case ms < 1000:
		return fmt.Sprintf("%dms", ms)
	case ms < 60_000:
		return fmt.Sprintf("%.2fs", float64(ms)/1000)
	default:
		return fmt.Sprintf("%dm%02ds", ms/60_000, (ms%60_000)/1000)
	}
}
