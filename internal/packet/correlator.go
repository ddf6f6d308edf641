package packet

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/atikulmunna/skein/internal/model"
)

// Correlator assigns packet ids and boundaries to a timestamp-sorted entry sequence.
// A Correlator holds only compiled patterns; all scan state lives in a single
// Apply call, so one Correlator may be shared between goroutines.
type Correlator struct {
	strategy Strategy
	start    *regexp.Regexp
	end      *regexp.Regexp
	id       *regexp.Regexp
}

// New compiles the patterns in opts. It returns a *PatternError when a pattern
// is invalid or a pattern the strategy depends on is missing.
func New(opts Options) (*Correlator, error) {
	strategy := opts.Strategy
	if strategy == "" {
		strategy = StrategyIdentifier
	}

	c := &Correlator{strategy: strategy}
	var err error

	switch strategy {
	case StrategyCounter:
		if strings.TrimSpace(opts.StartPattern) == "" {
			return nil, &PatternError{Field: "start", Err: errors.New("pattern is empty")}
		}
		if strings.TrimSpace(opts.EndPattern) == "" {
			return nil, &PatternError{Field: "end", Err: errors.New("pattern is empty")}
		}
		if c.start, err = CompilePattern("start", opts.StartPattern); err != nil {
			return nil, err
		}
		if c.end, err = CompilePattern("end", opts.EndPattern); err != nil {
			return nil, err
		}

	case StrategyIdentifier:
		if c.id, err = CompileIDPattern(opts.IDPattern); err != nil {
			return nil, err
		}
		if opts.StartPattern != "" {
			if c.start, err = CompilePattern("start", opts.StartPattern); err != nil {
				return nil, err
			}
		}
		if opts.EndPattern != "" {
			if c.end, err = CompilePattern("end", opts.EndPattern); err != nil {
				return nil, err
			}
		}

	default:
		return nil, fmt.Errorf("unknown packet strategy %q", strategy)
	}

	return c, nil
}

// Strategy returns the strategy the Correlator was built for.
func (c *Correlator) Strategy() Strategy {
	return c.strategy
}

// fileState is the open-packet state of one file at the current scan position.
type fileState struct {
	currentID string
	counter   int
	startTime time.Time
	startOK   bool // startTime parsed
}

// state holds per-file correlation state for a single Apply call.
type state struct {
	files map[string]*fileState
}

func newState() *state {
	return &state{files: make(map[string]*fileState)}
}

func (s *state) file(name string) *fileState {
	fs, ok := s.files[name]
	if !ok {
		fs = &fileState{}
		s.files[name] = fs
	}
	return fs
}

// Apply annotates entries in place. Entries must already be in timestamp order;
// correlation state is kept per FileName, so interleaved files do not interfere.
func (c *Correlator) Apply(entries []model.LogEntry) {
	st := newState()
	for i := range entries {
		e := &entries[i]
		fs := st.file(e.FileName)
		switch c.strategy {
		case StrategyCounter:
			c.applyCounter(fs, e)
		case StrategyIdentifier:
			c.applyIdentifier(fs, e)
		}
	}
}

func (c *Correlator) applyCounter(fs *fileState, e *model.LogEntry) {
	if c.start.MatchString(e.Message) {
		// Any packet still open in this file is abandoned without an end.
		fs.counter++
		fs.currentID = "packet_" + strconv.Itoa(fs.counter) + "_" + e.Timestamp
		fs.startTime, fs.startOK = model.ParseTimestamp(e.Timestamp)
		e.PacketID = fs.currentID
		e.IsPacketStart = true
		return
	}

	if fs.currentID == "" {
		return
	}

	e.PacketID = fs.currentID
	if c.end.MatchString(e.Message) {
		e.IsPacketEnd = true

		var d int64
		if endTime, ok := model.ParseTimestamp(e.Timestamp); ok && fs.startOK {
			d = model.DurationMs(fs.startTime, endTime)
		}
		e.DurationMs = &d

		fs.currentID = ""
		fs.startTime, fs.startOK = time.Time{}, false
	}
}

func (c *Correlator) applyIdentifier(fs *fileState, e *model.LogEntry) {
	if m := c.id.FindStringSubmatch(e.Message); m != nil && m[1] != "" {
		fs.currentID = m[1]
		e.PacketID = m[1]
		if c.start != nil && c.start.MatchString(e.Message) {
			e.IsPacketStart = true
		}
	} else if fs.currentID != "" {
		e.PacketID = fs.currentID
	}

	if e.PacketID != "" && c.end != nil && c.end.MatchString(e.Message) {
		e.IsPacketEnd = true
		fs.currentID = ""
	}
}
