package playback

import "sync/atomic"

// Progress is the single shared cell between the playback loop and its
// observers: the step the controller most recently published. It is a
// single-writer, multi-reader atomic; readers get a best-effort "latest
// step" and must never treat it as exact for correctness. Neither side ever
// blocks the other.
type Progress struct {
	step atomic.Int64
}

// NewProgress returns a progress cell at step 0.
func NewProgress() *Progress { return &Progress{} }

// Publish records the controller's current step. Only the playback
// controller calls this.
func (p *Progress) Publish(step int) {
	p.step.Store(int64(step))
}

// Current returns the most recently published step.
func (p *Progress) Current() int {
	return int(p.step.Load())
}
