package model

// Level is the severity token captured from a log header.
// Values are kept verbatim; the constants below are the ones seen in practice.
type Level string

const (
	LevelDebug    Level = "DEBUG"
	LevelInfo     Level = "INFO"
	LevelWarning  Level = "WARNING"
	LevelWarn     Level = "WARN"
	LevelError    Level = "ERROR"
	LevelCritical Level = "CRITICAL"
	LevelFatal    Level = "FATAL"
)

// SourceFile is one named log file with its full text content.
type SourceFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// LogEntry represents one logical log record, possibly spanning several physical lines.
type LogEntry struct {
	Timestamp  string `json:"timestamp"` // YYYY-MM-DD HH:MM:SS,mmm
	Level      Level  `json:"level"`
	Module     string `json:"module"`
	Message    string `json:"message"`
	FileName   string `json:"fileName"`
	LineNumber int    `json:"lineNumber"` // line of the first physical line, 1-based
	RawLine    string `json:"rawLine"`

	PacketID      string `json:"packetId,omitempty"`
	IsPacketStart bool   `json:"isPacketStart,omitempty"`
	IsPacketEnd   bool   `json:"isPacketEnd,omitempty"`
	ExtractMode   string `json:"extractMode,omitempty"`

	// DurationMs is set on the entry that closes a counter-strategy packet.
	DurationMs *int64 `json:"durationMs,omitempty"`
}

// HasPacket reports whether the entry was assigned to a packet.
func (e LogEntry) HasPacket() bool {
	return e.PacketID != ""
}
