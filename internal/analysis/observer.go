// Package analysis watches a replay as it runs: it polls the tracker on its
// own cadence, measures how far the tracked tip is from the planned
// trajectory, and reconstructs the robot's bending arc from the landmark
// triple. It only ever reads the shared progress cell; it never slows the
// playback loop down.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"

	"github.com/em-ni/sorolearn/internal/geom"
	"github.com/em-ni/sorolearn/internal/monitoring"
	"github.com/em-ni/sorolearn/internal/playback"
	"github.com/em-ni/sorolearn/internal/tracker"
	"github.com/em-ni/sorolearn/internal/trajectory"
)

// DefaultInterval is the observation cadence when none is configured.
const DefaultInterval = 50 * time.Millisecond

// Config tunes an Observer.
type Config struct {
	// Interval between observation ticks. Defaults to DefaultInterval.
	Interval time.Duration
	// ArcSamples is the number of points per reconstructed arc. Defaults to
	// geom.DefaultSamples.
	ArcSamples int
	// Clock substitutes a mock clock in tests. Defaults to the wall clock.
	Clock clock.Clock
}

// Observer accumulates the tracked tip path and its deviation from the plan.
// The histories are appended by Run's goroutine only and must not be read
// until Run has returned.
type Observer struct {
	plan     *trajectory.Plan
	trk      tracker.Tracker
	progress *playback.Progress

	interval   time.Duration
	arcSamples int
	clk        clock.Clock

	arcSink func([]r3.Vector)

	positions []r3.Vector
	errs      []float64

	collinearWarned bool
}

// NewObserver wires an observer to a plan, a tracker and the controller's
// progress cell.
func NewObserver(plan *trajectory.Plan, trk tracker.Tracker, progress *playback.Progress, cfg Config) (*Observer, error) {
	if plan == nil {
		return nil, fmt.Errorf("analysis: nil plan")
	}
	if trk == nil {
		return nil, fmt.Errorf("analysis: nil tracker")
	}
	if progress == nil {
		return nil, fmt.Errorf("analysis: nil progress cell")
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	arcSamples := cfg.ArcSamples
	if arcSamples <= 0 {
		arcSamples = geom.DefaultSamples
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	return &Observer{
		plan:       plan,
		trk:        trk,
		progress:   progress,
		interval:   interval,
		arcSamples: arcSamples,
		clk:        clk,
	}, nil
}

// SetArcSink registers a consumer for reconstructed arc points. The sink is
// called from the observation goroutine; it must not block. Set it before
// calling Run.
func (o *Observer) SetArcSink(fn func([]r3.Vector)) { o.arcSink = fn }

// Run ticks until ctx is cancelled. Cancellation is the normal way an
// observation cycle ends, so Run returns nil.
func (o *Observer) Run(ctx context.Context) error {
	ticker := o.clk.Ticker(o.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			o.tick()
		}
	}
}

// tick performs one observation. Any failure inside a tick is logged and the
// tick is dropped; nothing here may stop the observation cycle or touch the
// playback loop.
func (o *Observer) tick() {
	snap := tracker.Poll(o.trk)

	// Without a base there is no frame to express positions in; the tick
	// contributes nothing (not a zero entry).
	if !snap.HasBase || !snap.HasTip {
		return
	}

	tipRel := snap.Tip.Sub(snap.Base)
	o.positions = append(o.positions, tipRel)

	// Deviation against whatever step the controller last published. The
	// read may be stale by up to one step period; that staleness is part of
	// the metric's definition, not something to correct for here.
	if step := o.progress.Current(); step < o.plan.Steps() {
		o.errs = append(o.errs, tipRel.Sub(o.plan.Reference(step)).Norm())
	}

	if !snap.HasBody {
		return
	}
	bodyRel := snap.Body.Sub(snap.Base)

	arc, err := geom.ArcThroughPoints(r3.Vector{}, bodyRel, tipRel, o.arcSamples)
	if err != nil {
		if errors.Is(err, geom.ErrCollinear) {
			if !o.collinearWarned {
				monitoring.Logf("analysis: landmarks collinear, no arc (warning once)")
				o.collinearWarned = true
			}
			return
		}
		monitoring.Logf("analysis: arc reconstruction failed: %v", err)
		return
	}
	if o.arcSink != nil {
		o.arcSink(arc)
	}
}

// Positions returns a copy of the tip-relative position history. Call only
// after Run has returned.
func (o *Observer) Positions() []r3.Vector {
	return append([]r3.Vector(nil), o.positions...)
}

// Errors returns a copy of the tracking-error history. Call only after Run
// has returned.
func (o *Observer) Errors() []float64 {
	return append([]float64(nil), o.errs...)
}
