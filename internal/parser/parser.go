package parser

import (
	"regexp"
	"strings"

	"github.com/atikulmunna/skein/internal/model"
)

// headerPattern matches "YYYY-MM-DD HH:MM:SS,mmm | LEVEL | module | message".
// The module cannot contain '|'; the message takes the rest of the line.
const headerPattern = `^(\d{4}-\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2},\d{3})\s*\|\s*(\w+)\s*\|\s*([^|]+?)\s*\|\s*(.+)$`

var extractModePattern = regexp.MustCompile(`(?i)routed to extract mode:\s*([a-zA-Z0-9_-]+)`)

// ---------------------------------------------------------------------------
// Line Parser
// ---------------------------------------------------------------------------

// LineParser turns one header line into a LogEntry.
type LineParser struct {
	re *regexp.Regexp
}

// NewLineParser creates a LineParser for the pipe-delimited header format.
func NewLineParser() *LineParser {
	return &LineParser{re: regexp.MustCompile(headerPattern)}
}

// Parse returns the entry for a header line. ok is false when the line is not
// a header, in which case the caller decides whether it is a continuation.
func (p *LineParser) Parse(line, fileName string, lineNumber int) (entry model.LogEntry, ok bool) {
	m := p.re.FindStringSubmatch(line)
	if m == nil {
		return model.LogEntry{}, false
	}

	message := strings.TrimSpace(m[4])
	return model.LogEntry{
		Timestamp:   strings.TrimSpace(m[1]),
		Level:       model.Level(strings.TrimSpace(m[2])),
		Module:      strings.TrimSpace(m[3]),
		Message:     message,
		FileName:    fileName,
		LineNumber:  lineNumber,
		RawLine:     line,
		ExtractMode: ExtractMode(message),
	}, true
}

var defaultLineParser = NewLineParser()

// ParseLine parses a line with the shared default LineParser.
func ParseLine(line, fileName string, lineNumber int) (model.LogEntry, bool) {
	return defaultLineParser.Parse(line, fileName, lineNumber)
}

// ExtractMode returns the workload tag from "routed to extract mode: <tag>", or "".
func ExtractMode(message string) string {
	m := extractModePattern.FindStringSubmatch(message)
	if m == nil {
		return ""
	}
	return m[1]
}

// ---------------------------------------------------------------------------
// File Reconstructor
// ---------------------------------------------------------------------------

// ParseFile walks a file's lines and folds continuation lines (stack traces,
// wrapped output) into the entry above them. Lines before the first header
// have no entry to join and are dropped.
func ParseFile(file model.SourceFile) []model.LogEntry {
	return defaultLineParser.ParseFile(file)
}

// ParseFile is the LineParser-bound form of the package-level ParseFile.
func (p *LineParser) ParseFile(file model.SourceFile) []model.LogEntry {
	var (
		entries []model.LogEntry
		current *model.LogEntry
	)

	for i, line := range strings.Split(file.Content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		if parsed, ok := p.Parse(line, file.Name, i+1); ok {
			if current != nil {
				entries = append(entries, *current)
			}
			current = &parsed
			continue
		}

		if current != nil {
			current.Message += "\n" + line
			current.RawLine += "\n" + line
		}
	}

	if current != nil {
		entries = append(entries, *current)
	}
	return entries
}
