package playback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/em-ni/sorolearn/internal/monitoring"
	"github.com/em-ni/sorolearn/internal/robot"
	"github.com/em-ni/sorolearn/internal/trajectory"
)

func init() {
	// Keep timed-loop chatter out of test output.
	monitoring.SetLogger(nil)
}

// testPlan builds an N-step plan with reference (i,0,0) and control
// {i, 10+i} per step.
func testPlan(t *testing.T, n int) *trajectory.Plan {
	t.Helper()
	refs := make([]r3.Vector, n)
	controls := make([][]float64, n)
	for i := 0; i < n; i++ {
		refs[i] = r3.Vector{X: float64(i)}
		controls[i] = []float64{float64(i), float64(10 + i)}
	}
	plan, err := trajectory.New(refs, controls)
	require.NoError(t, err)
	return plan
}

func TestProgress(t *testing.T) {
	t.Parallel()

	p := NewProgress()
	assert.Equal(t, 0, p.Current())
	p.Publish(3)
	assert.Equal(t, 3, p.Current())
}

func TestControllerDispatchPolicy(t *testing.T) {
	t.Parallel()

	plan := testPlan(t, 6)
	mock := robot.NewMockPort()
	offsets := []float64{0.5, -0.5}

	c, err := NewController(plan, offsets, mock, Config{StepPeriod: time.Millisecond})
	require.NoError(t, err)

	require.NoError(t, c.Run(context.Background()))

	// Odd steps 1, 3, 5 dispatch; even steps never do.
	commands := mock.Commands()
	require.Len(t, commands, 3)
	assert.Equal(t, 3, c.Dispatched())
	for i, step := range []int{1, 3, 5} {
		assert.Equal(t, []float64{float64(step) + 0.5, float64(10+step) - 0.5}, commands[i])
	}

	assert.Equal(t, 5, c.Progress().Current())
}

func TestControllerPacingFloor(t *testing.T) {
	t.Parallel()

	const n = 8
	period := 50 * time.Millisecond

	mock := clock.NewMock()
	plan := testPlan(t, n)

	c, err := NewController(plan, []float64{0, 0}, robot.NewMockPort(), Config{
		StepPeriod: period,
		Clock:      mock,
	})
	require.NoError(t, err)

	start := mock.Now()
	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	deadline := time.After(10 * time.Second)
	for {
		select {
		case err := <-done:
			require.NoError(t, err)
			elapsed := mock.Now().Sub(start)
			assert.GreaterOrEqual(t, elapsed, time.Duration(n)*period,
				"total elapsed time must cover every step period")
			return
		case <-deadline:
			t.Fatal("controller did not finish under the mock clock")
		default:
			mock.Add(period / 2)
			time.Sleep(time.Millisecond)
		}
	}
}

func TestControllerProgressMonotone(t *testing.T) {
	t.Parallel()

	plan := testPlan(t, 20)
	c, err := NewController(plan, []float64{0, 0}, robot.NewMockPort(), Config{StepPeriod: time.Millisecond})
	require.NoError(t, err)

	stop := make(chan struct{})
	samples := make(chan []int, 1)
	go func() {
		var seen []int
		for {
			select {
			case <-stop:
				samples <- seen
				return
			default:
				seen = append(seen, c.Progress().Current())
			}
		}
	}()

	require.NoError(t, c.Run(context.Background()))
	close(stop)

	seen := <-samples
	for i := 1; i < len(seen); i++ {
		require.GreaterOrEqual(t, seen[i], seen[i-1], "progress went backwards")
	}
	assert.Equal(t, 19, c.Progress().Current())
}

func TestControllerAbortsOnDispatchFailure(t *testing.T) {
	t.Parallel()

	plan := testPlan(t, 6)
	mock := robot.NewMockPort()
	wantErr := errors.New("valve fault")
	mock.FailWith(wantErr)

	c, err := NewController(plan, []float64{0, 0}, mock, Config{StepPeriod: time.Millisecond})
	require.NoError(t, err)

	err = c.Run(context.Background())
	require.ErrorIs(t, err, wantErr)
	assert.Contains(t, err.Error(), "dispatch step 1")
	assert.Equal(t, 0, c.Dispatched())
	// Step 0 was published before the failing dispatch at step 1.
	assert.Equal(t, 0, c.Progress().Current())
}

func TestControllerCancellation(t *testing.T) {
	t.Parallel()

	plan := testPlan(t, 1000)
	c, err := NewController(plan, []float64{0, 0}, robot.NewMockPort(), Config{StepPeriod: 10 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	time.Sleep(25 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("controller did not stop promptly on cancellation")
	}
}

func TestNewControllerValidation(t *testing.T) {
	t.Parallel()

	plan := testPlan(t, 2)

	_, err := NewController(nil, nil, robot.NewMockPort(), Config{})
	assert.Error(t, err)

	_, err = NewController(plan, []float64{0, 0}, nil, Config{})
	assert.Error(t, err)

	_, err = NewController(plan, []float64{0}, robot.NewMockPort(), Config{})
	assert.Error(t, err, "offset width must match control width")
}
