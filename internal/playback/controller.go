// Package playback drives a precomputed control plan onto the robot on a
// fixed cadence and publishes its progress for concurrent observers.
package playback

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/em-ni/sorolearn/internal/monitoring"
	"github.com/em-ni/sorolearn/internal/pressure"
	"github.com/em-ni/sorolearn/internal/robot"
	"github.com/em-ni/sorolearn/internal/trajectory"
)

// DefaultStepPeriod matches the step interval the plan was optimized for.
const DefaultStepPeriod = 100 * time.Millisecond

// Config tunes a Controller.
type Config struct {
	// StepPeriod is the target wall time per plan step. Defaults to
	// DefaultStepPeriod.
	StepPeriod time.Duration
	// Clock substitutes a mock clock in tests. Defaults to the wall clock.
	Clock clock.Clock
}

// Controller replays a plan's control sequence through a command port.
// Commands are dispatched only on odd steps (the half-rate command policy:
// the pressure dynamics settle over two plan steps), every step advances the
// shared progress cell, and pacing subtracts dispatch latency so the cadence
// holds even when the port is slow.
type Controller struct {
	plan     *trajectory.Plan
	offsets  []float64
	port     robot.CommandPort
	progress *Progress

	period     time.Duration
	clk        clock.Clock
	dispatched atomic.Int64
}

// NewController validates the plan/offset pairing and returns a controller
// publishing into a fresh progress cell.
func NewController(plan *trajectory.Plan, offsets []float64, port robot.CommandPort, cfg Config) (*Controller, error) {
	if plan == nil {
		return nil, fmt.Errorf("playback: nil plan")
	}
	if port == nil {
		return nil, fmt.Errorf("playback: nil command port")
	}
	if len(offsets) != plan.ControlWidth() {
		return nil, fmt.Errorf("playback: %d pressure offsets for control width %d", len(offsets), plan.ControlWidth())
	}

	period := cfg.StepPeriod
	if period <= 0 {
		period = DefaultStepPeriod
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	return &Controller{
		plan:     plan,
		offsets:  append([]float64(nil), offsets...),
		port:     port,
		progress: NewProgress(),
		period:   period,
		clk:      clk,
	}, nil
}

// Progress returns the shared progress cell for observers.
func (c *Controller) Progress() *Progress { return c.progress }

// Dispatched returns how many commands have been sent so far.
func (c *Controller) Dispatched() int { return int(c.dispatched.Load()) }

// Run replays the plan from step 0 to N-1. It returns nil on normal
// completion, the context error on cancellation, or the wrapped dispatch
// error on a failed send. A dispatch failure aborts the run: once a command
// is lost the physical state no longer matches the plan, so continuing
// would drive the robot from the wrong state.
func (c *Controller) Run(ctx context.Context) error {
	n := c.plan.Steps()
	monitoring.Logf("playback: starting trajectory of %d steps, period %s", n, c.period)

	for step := 0; step < n; step++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Even steps only advance progress; no command goes out.
		if step%2 == 0 {
			c.progress.Publish(step)
			if err := c.wait(ctx, c.period); err != nil {
				return err
			}
			continue
		}

		start := c.clk.Now()

		command := pressure.Apply(c.plan.Control(step), c.offsets)
		if err := c.port.SendCommand(ctx, command); err != nil {
			return fmt.Errorf("playback: dispatch step %d: %w", step, err)
		}
		c.dispatched.Add(1)
		monitoring.Logf("playback: step %d/%d dispatched command %v", step+1, n, command)

		c.progress.Publish(step)

		// Hold the cadence: sleep whatever remains of the period after
		// dispatch latency, never a negative amount.
		if err := c.wait(ctx, c.period-c.clk.Since(start)); err != nil {
			return err
		}
	}

	monitoring.Logf("playback: trajectory complete")
	return nil
}

// wait pauses for d on the controller's clock, returning early if ctx is
// cancelled. Non-positive durations return immediately.
func (c *Controller) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := c.clk.Timer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
