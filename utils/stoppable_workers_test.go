package utils

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.viam.com/test"
)

func TestStoppableWorkers(t *testing.T) {
	started := make(chan struct{}, 2)
	worker := func(ctx context.Context) {
		started <- struct{}{}
		<-ctx.Done()
	}
	sw := NewStoppableWorkers(worker)
	test.That(t, sw.AddWorkers(worker), test.ShouldBeTrue)
	<-started
	<-started

	sw.Stop()
	test.That(t, sw.Context().Err(), test.ShouldNotBeNil)
	test.That(t, sw.AddWorkers(worker), test.ShouldBeFalse)
	// stopping twice is harmless.
	sw.Stop()
}

func TestStoppableWorkersParentContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	sw := NewStoppableWorkersWithContext(ctx, func(ctx context.Context) {
		<-ctx.Done()
		close(done)
	})
	cancel()
	<-done
	sw.Stop()
}

func TestTimebase(t *testing.T) {
	mock := clock.NewMock()
	tb := NewTimebase(mock)
	test.That(t, tb.Now(), test.ShouldEqual, time.Duration(0))

	mock.Add(1500 * time.Millisecond)
	test.That(t, tb.Now(), test.ShouldEqual, 1500*time.Millisecond)
	test.That(t, Seconds(tb.Now()), test.ShouldEqual, float32(1.5))
	test.That(t, FromSeconds(1.5), test.ShouldEqual, 1500*time.Millisecond)
}
