package analysis

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary aggregates a run's tracking-error history.
type Summary struct {
	Mean    float64
	Max     float64
	Final   float64
	Samples int
}

// Summary reduces the error history. The second return is false when no
// error was ever recorded (e.g. the tracker never had a fix). Call only
// after Run has returned.
func (o *Observer) Summary() (Summary, bool) {
	if len(o.errs) == 0 {
		return Summary{}, false
	}
	return Summary{
		Mean:    stat.Mean(o.errs, nil),
		Max:     floats.Max(o.errs),
		Final:   o.errs[len(o.errs)-1],
		Samples: len(o.errs),
	}, true
}
