package utils

import (
	"time"

	"github.com/benbjohnson/clock"
)

// Timebase measures elapsed time from a fixed epoch. The control loop and the transport share
// one so that the timestamps carried on the wire and the ack arrival times are comparable.
type Timebase struct {
	clock clock.Clock
	epoch time.Time
}

// NewTimebase starts a timebase now. A nil clock means the wall clock (which is monotonic
// within a process).
func NewTimebase(clk clock.Clock) *Timebase {
	if clk == nil {
		clk = clock.New()
	}
	return &Timebase{clock: clk, epoch: clk.Now()}
}

// Now returns the time elapsed since the epoch.
func (tb *Timebase) Now() time.Duration {
	return tb.clock.Since(tb.epoch)
}

// Clock returns the underlying clock.
func (tb *Timebase) Clock() clock.Clock {
	return tb.clock
}

// Seconds converts an elapsed time into the float32 seconds used on the wire.
func Seconds(d time.Duration) float32 {
	return float32(d.Seconds())
}

// FromSeconds converts wire seconds back into a duration.
func FromSeconds(s float32) time.Duration {
	return time.Duration(float64(s) * float64(time.Second))
}
