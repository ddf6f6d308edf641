package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"

	"github.com/atikulmunna/skein/internal/model"
	"github.com/atikulmunna/skein/internal/palette"
)

// Renderer writes LogEntry values to an output stream.
type Renderer interface {
	Render(entry model.LogEntry) error
}

// ColorEnabled resolves a --color flag value ("auto", "always", "never")
// for the given writer.
func ColorEnabled(mode string, w io.Writer) bool {
	switch strings.ToLower(mode) {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ---------------------------------------------------------------------------
// Text Renderer (colorized terminal output)
// ---------------------------------------------------------------------------

var (
	styleInfo  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")) // gray
	styleDebug = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Faint(true)
	styleWarn  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))            // yellow
	styleError = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true) // red bold
	styleFatal = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("196")).
			Bold(true) // white on red
	styleSource = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Faint(true) // cyan
	styleMarker = lipgloss.NewStyle().Bold(true)
)

// TextRenderer prints entries with severity colors and one color per packet.
type TextRenderer struct {
	w      io.Writer
	color  bool
	packet map[string]lipgloss.Style
}

// NewTextRenderer returns a Renderer that writes text to w. packetColors maps
// packet ids to the hsl colors produced by palette.ColorMap.
func NewTextRenderer(w io.Writer, packetColors map[string]string, color bool) *TextRenderer {
	r := &TextRenderer{w: w, color: color, packet: make(map[string]lipgloss.Style, len(packetColors))}
	for id, c := range packetColors {
		hex, err := palette.Hex(c)
		if err != nil {
			log.Debug().Err(err).Str("packet", id).Msg("skipping packet color")
			continue
		}
		r.packet[id] = lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
	}
	return r
}

func (r *TextRenderer) Render(entry model.LogEntry) error {
	var sb strings.Builder
	sb.WriteString(entry.Timestamp)
	sb.WriteByte(' ')
	sb.WriteString(r.levelTag(entry.Level))
	sb.WriteByte(' ')
	sb.WriteString(r.style(styleSource, fmt.Sprintf("%s:%d", entry.FileName, entry.LineNumber)))

	if entry.PacketID != "" {
		sb.WriteByte(' ')
		sb.WriteString(r.packetTag(entry))
	}
	if entry.DurationMs != nil {
		fmt.Fprintf(&sb, " (%dms)", *entry.DurationMs)
	}

	sb.WriteByte(' ')
	sb.WriteString(entry.Module)
	sb.WriteString(" | ")
	sb.WriteString(entry.Message)

	_, err := fmt.Fprintln(r.w, sb.String())
	return err
}

func (r *TextRenderer) packetTag(entry model.LogEntry) string {
	marker := ""
	switch {
	case entry.IsPacketStart:
		marker = "▶"
	case entry.IsPacketEnd:
		marker = "■"
	}
	tag := "[" + entry.PacketID + "]"
	if st, ok := r.packet[entry.PacketID]; ok {
		tag = r.style(st, tag)
	}
	if marker != "" {
		tag = r.style(styleMarker, marker) + tag
	}
	return tag
}

func (r *TextRenderer) levelTag(level model.Level) string {
	padded := fmt.Sprintf("%-5s", level)
	switch model.Level(strings.ToUpper(string(level))) {
	case model.LevelDebug:
		return r.style(styleDebug, padded)
	case model.LevelWarn, model.LevelWarning:
		return r.style(styleWarn, padded)
	case model.LevelError:
		return r.style(styleError, padded)
	case model.LevelFatal, model.LevelCritical:
		return r.style(styleFatal, padded)
	default:
		return r.style(styleInfo, padded)
	}
}

func (r *TextRenderer) style(st lipgloss.Style, s string) string {
	if !r.color {
		return s
	}
	return st.Render(s)
}

// ---------------------------------------------------------------------------
// JSON Renderer (structured output for piping)
// ---------------------------------------------------------------------------

// JSONRenderer prints each log entry as a single JSON object per line.
type JSONRenderer struct {
	enc *json.Encoder
}

// NewJSONRenderer returns a Renderer that writes JSON lines to w.
func NewJSONRenderer(w io.Writer) *JSONRenderer {
	return &JSONRenderer{enc: json.NewEncoder(w)}
}

func (r *JSONRenderer) Render(entry model.LogEntry) error {
	return r.enc.Encode(entry)
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
