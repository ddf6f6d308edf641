package model

// SummaryCount is one label with its occurrence count.
type SummaryCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// TimeRange is the span between the earliest and latest parsable timestamps.
type TimeRange struct {
	Start      string `json:"start"`
	End        string `json:"end"`
	DurationMs int64  `json:"durationMs"`
}

// PacketDurationSummary describes one closed packet.
type PacketDurationSummary struct {
	PacketID       string   `json:"packetId"`
	StartTimestamp string   `json:"startTimestamp"`
	EndTimestamp   string   `json:"endTimestamp"`
	DurationMs     int64    `json:"durationMs"`
	FileName       string   `json:"fileName"`
	Tags           []string `json:"tags"`
}

// PacketStats holds packet counts and duration statistics.
// The duration fields are nil when no packet was closed.
type PacketStats struct {
	TotalPackets        int      `json:"totalPackets"`
	PacketsWithDuration int      `json:"packetsWithDuration"`
	MinDurationMs       *int64   `json:"minDurationMs,omitempty"`
	MaxDurationMs       *int64   `json:"maxDurationMs,omitempty"`
	AvgDurationMs       *float64 `json:"avgDurationMs,omitempty"`
}

// LogSummary is the aggregate view over a parsed entry sequence.
type LogSummary struct {
	TotalEntries    int                     `json:"totalEntries"`
	TotalFiles      int                     `json:"totalFiles"`
	TimeRange       *TimeRange              `json:"timeRange,omitempty"`
	Levels          []SummaryCount          `json:"levels"`
	Files           []SummaryCount          `json:"files"`
	PacketStats     PacketStats             `json:"packetStats"`
	PacketDurations []PacketDurationSummary `json:"packetDurations"`
}
