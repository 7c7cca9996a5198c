// Package tracker exposes the robot's tracked landmark positions: the base
// of the arm, the actuated tip, and a mid-body marker. Implementations keep
// their own refresh loop; consumers poll for the latest fix and never block
// a producer.
package tracker

import "github.com/golang/geo/r3"

// Tracker reports the most recent position fix for each landmark. The
// boolean is false when the tracker has no current fix for that landmark.
// All methods must be safe to call concurrently with the implementation's
// own refresh loop.
type Tracker interface {
	CurrentBase() (r3.Vector, bool)
	CurrentTip() (r3.Vector, bool)
	CurrentBody() (r3.Vector, bool)
}

// Snapshot is one polled set of landmark fixes. It is produced fresh per
// poll and not retained by this package.
type Snapshot struct {
	Base, Tip, Body          r3.Vector
	HasBase, HasTip, HasBody bool
}

// Poll reads all three landmarks from t in one pass.
func Poll(t Tracker) Snapshot {
	var s Snapshot
	s.Base, s.HasBase = t.CurrentBase()
	s.Tip, s.HasTip = t.CurrentTip()
	s.Body, s.HasBody = t.CurrentBody()
	return s
}
