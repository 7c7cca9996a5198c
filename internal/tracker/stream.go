package tracker

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"

	"github.com/em-ni/sorolearn/internal/monitoring"
)

// Stream is a Tracker fed by a line protocol from the motion-capture bridge:
// one landmark fix per line, "<landmark>,<x>,<y>,<z>" with landmark one of
// base, tip or body. Run consumes the stream on its own goroutine; polls
// always return the latest parsed fix. Malformed lines are logged and
// skipped so a glitching bridge never stops the refresh loop.
type Stream struct {
	src io.Reader
	sim Simulated // reused as the thread-safe latest-value store
}

// NewStream returns a stream tracker reading from src. No fixes are
// available until Run has parsed the first lines.
func NewStream(src io.Reader) *Stream {
	return &Stream{src: src}
}

// Run consumes landmark lines until the stream ends or ctx is cancelled.
// A closed stream is a normal shutdown, not an error.
func (s *Stream) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.src)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := s.apply(line); err != nil {
			monitoring.Logf("tracker: skipping line: %v", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("tracker: read stream: %w", err)
	}
	return nil
}

func (s *Stream) apply(line string) error {
	parts := strings.Split(line, ",")
	if len(parts) != 4 {
		return fmt.Errorf("expected 4 fields, got %d in %q", len(parts), line)
	}

	var xyz [3]float64
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i+1]), 64)
		if err != nil {
			return fmt.Errorf("bad coordinate in %q: %w", line, err)
		}
		xyz[i] = v
	}
	fix := r3.Vector{X: xyz[0], Y: xyz[1], Z: xyz[2]}

	switch strings.ToLower(strings.TrimSpace(parts[0])) {
	case "base":
		s.sim.SetBase(fix)
	case "tip":
		s.sim.SetTip(fix)
	case "body":
		s.sim.SetBody(fix)
	default:
		return fmt.Errorf("unknown landmark %q", parts[0])
	}
	return nil
}

// CurrentBase implements Tracker.
func (s *Stream) CurrentBase() (r3.Vector, bool) { return s.sim.CurrentBase() }

// CurrentTip implements Tracker.
func (s *Stream) CurrentTip() (r3.Vector, bool) { return s.sim.CurrentTip() }

// CurrentBody implements Tracker.
func (s *Stream) CurrentBody() (r3.Vector, bool) { return s.sim.CurrentBody() }
