package transport

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"
)

// outstanding is a control packet waiting for acknowledgements.
type outstanding struct {
	timestamp float32
	sentAt    time.Duration
	firstAck  time.Duration
	acked     bool
	acks      int
}

// evicted is what the statistics remember about a packet that left the window.
type evicted struct {
	delay time.Duration
	acked bool
	acks  int
}

// ackWindow tracks the most recent control packets, ordered by timestamp, and the statistics
// derived from the packets that were evicted from it. It is not safe for concurrent use.
type ackWindow struct {
	size       int
	duplicates int
	entries    []outstanding
	history    []evicted

	avgAckDelay    time.Duration
	failurePercent float64
	dropPercent    float64
}

func newAckWindow(size, duplicates int) *ackWindow {
	return &ackWindow{
		size:       size,
		duplicates: duplicates,
		entries:    make([]outstanding, 0, size+1),
		history:    make([]evicted, 0, size+1),
	}
}

// push records a new packet. Timestamps must increase.
func (w *ackWindow) push(timestamp float32, sentAt time.Duration) {
	w.entries = append(w.entries, outstanding{timestamp: timestamp, sentAt: sentAt})
	if len(w.entries) <= w.size {
		return
	}
	for len(w.entries) > w.size {
		old := w.entries[0]
		w.entries = w.entries[1:]
		w.history = append(w.history, evicted{delay: old.firstAck - old.sentAt, acked: old.acked, acks: old.acks})
	}
	if over := len(w.history) - w.size; over > 0 {
		w.history = w.history[over:]
	}
	w.recompute()
}

// index returns the position of the packet sent with timestamp, or -1.
func (w *ackWindow) index(timestamp float32) int {
	idx := sort.Search(len(w.entries), func(i int) bool {
		return w.entries[i].timestamp >= timestamp
	})
	if idx == len(w.entries) || w.entries[idx].timestamp != timestamp {
		return -1
	}
	return idx
}

// ack matches an echoed timestamp. It returns false for a stale ack.
func (w *ackWindow) ack(timestamp float32, at time.Duration) (*outstanding, bool) {
	idx := w.index(timestamp)
	if idx < 0 {
		return nil, false
	}
	entry := &w.entries[idx]
	entry.acks++
	if !entry.acked {
		entry.acked = true
		entry.firstAck = at
	}
	return entry, true
}

func (w *ackWindow) recompute() {
	if len(w.history) == 0 {
		return
	}
	delays := make([]float64, 0, len(w.history))
	acks := make([]float64, 0, len(w.history))
	for _, e := range w.history {
		if e.acked {
			delays = append(delays, float64(e.delay))
		}
		acks = append(acks, float64(e.acks))
	}

	// the previous average survives a window without any acknowledged packet
	if mean, err := stats.Mean(delays); err == nil {
		w.avgAckDelay = time.Duration(mean)
	}
	w.failurePercent = float64(len(w.history)-len(delays)) / float64(len(w.history)) * 100

	total, err := stats.Sum(acks)
	if err != nil {
		return
	}
	expected := float64(len(w.history) * w.duplicates)
	w.dropPercent = (expected - total) / expected * 100
}
