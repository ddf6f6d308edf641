package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/atikulmunna/skein/internal/model"
	"github.com/atikulmunna/skein/internal/packet"
)

// BenchmarkLineParser measures header-line parsing throughput.
func BenchmarkLineParser(b *testing.B) {
	p := NewLineParser()
	line := "2026-02-17 12:00:00,123 | INFO | ingest.worker | Received message on jobs job_id=abc-123"

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		p.Parse(line, "bench.log", i+1)
	}
}

// BenchmarkParseFile measures reconstruction of a file with stack traces.
func BenchmarkParseFile(b *testing.B) {
	file := model.SourceFile{Name: "bench.log", Content: generateLog(1000, 0)}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ParseFile(file)
	}
}

// BenchmarkParseLogFilesThroughput measures the full pipeline over interleaved files.
func BenchmarkParseLogFilesThroughput(b *testing.B) {
	files := make([]model.SourceFile, 4)
	for i := range files {
		files[i] = model.SourceFile{Name: fmt.Sprintf("worker-%d.log", i), Content: generateLog(2500, i)}
	}
	opts := packet.Options{Enabled: true, StartPattern: "Received message on", EndPattern: "Processed OK"}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ParseLogFiles(files, opts)
	}
}

func generateLog(n, offset int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		ts := fmt.Sprintf("2026-02-17 12:%02d:%02d,%03d", (i/60)%60, i%60, (i*7+offset)%1000)
		switch i % 5 {
		case 0:
			fmt.Fprintf(&sb, "%s | INFO | worker | Received message on jobs job_id=job-%d-%d\n", ts, offset, i)
		case 1:
			fmt.Fprintf(&sb, "%s | INFO | router | routed to extract mode: mode_%d\n", ts, i%3)
		case 2:
			fmt.Fprintf(&sb, "%s | ERROR | worker | failed step %d\n  at step.go:%d\n  at main.go:1\n", ts, i, i)
		case 3:
			fmt.Fprintf(&sb, "%s | DEBUG | worker | heartbeat\n", ts)
		case 4:
			fmt.Fprintf(&sb, "%s | INFO | worker | Processed OK\n", ts)
		}
	}
	return sb.String()
}
