package transport

import (
	"testing"
	"time"

	"go.viam.com/test"
)

func TestAckWindowMatching(t *testing.T) {
	w := newAckWindow(3, 5)
	w.push(1, time.Second)
	w.push(2, 2*time.Second)
	w.push(3, 3*time.Second)

	for i := 0; i < 5; i++ {
		_, ok := w.ack(2, 2*time.Second+time.Duration(i+1)*10*time.Millisecond)
		test.That(t, ok, test.ShouldBeTrue)
	}
	e, ok := w.find(2)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, e.acks, test.ShouldEqual, 5)
	test.That(t, e.firstAck, test.ShouldEqual, 2*time.Second+10*time.Millisecond)

	_, ok = w.ack(2.5, 4*time.Second)
	test.That(t, ok, test.ShouldBeFalse)
	_, ok = w.ack(99, 4*time.Second)
	test.That(t, ok, test.ShouldBeFalse)

	// evicted packets are stale
	w.push(4, 4*time.Second)
	test.That(t, len(w.entries), test.ShouldEqual, 3)
	_, ok = w.ack(1, 4*time.Second)
	test.That(t, ok, test.ShouldBeFalse)
}

func TestAckWindowStats(t *testing.T) {
	t.Run("all acknowledged", func(t *testing.T) {
		w := newAckWindow(2, 5)
		for ts := 1; ts <= 4; ts++ {
			sent := time.Duration(ts) * time.Second
			w.push(float32(ts), sent)
			for i := 0; i < 5; i++ {
				w.ack(float32(ts), sent+20*time.Millisecond)
			}
		}
		test.That(t, len(w.history), test.ShouldEqual, 2)
		test.That(t, w.dropPercent, test.ShouldEqual, 0)
		test.That(t, w.failurePercent, test.ShouldEqual, 0)
		test.That(t, w.avgAckDelay, test.ShouldEqual, 20*time.Millisecond)
	})

	t.Run("nothing acknowledged", func(t *testing.T) {
		w := newAckWindow(2, 5)
		for ts := 1; ts <= 4; ts++ {
			w.push(float32(ts), time.Duration(ts)*time.Second)
		}
		test.That(t, w.dropPercent, test.ShouldEqual, 100)
		test.That(t, w.failurePercent, test.ShouldEqual, 100)
		test.That(t, w.avgAckDelay, test.ShouldEqual, 0)
	})

	t.Run("partial", func(t *testing.T) {
		w := newAckWindow(2, 5)
		w.push(1, time.Second)
		w.ack(1, time.Second+30*time.Millisecond)
		w.ack(1, time.Second+40*time.Millisecond)
		w.push(2, 2*time.Second)
		w.push(3, 3*time.Second)
		w.push(4, 4*time.Second)
		// history holds packet 1 (2 acks) and packet 2 (none)
		test.That(t, w.dropPercent, test.ShouldEqual, 80)
		test.That(t, w.failurePercent, test.ShouldEqual, 50)
		test.That(t, w.avgAckDelay, test.ShouldEqual, 30*time.Millisecond)

		// the last average survives a history without acknowledgements
		w.push(5, 5*time.Second)
		test.That(t, w.failurePercent, test.ShouldEqual, 100)
		test.That(t, w.avgAckDelay, test.ShouldEqual, 30*time.Millisecond)
	})
}

func (w *ackWindow) find(timestamp float32) (outstanding, bool) {
	idx := w.index(timestamp)
	if idx < 0 {
		return outstanding{}, false
	}
	return w.entries[idx], true
}
