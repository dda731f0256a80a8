package rig

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"go.viam.com/forcefeedback/logging"
	"go.viam.com/forcefeedback/utils"
)

// DefaultFrequency is the tick rate of the rig in Hz.
const DefaultFrequency = 50.0

// Loop ticks a rig at a fixed frequency with frames from a source.
type Loop struct {
	rig       *Rig
	source    FrameSource
	frequency float64
	dt        time.Duration
	logger    logging.Logger
	frameLog  rate.Sometimes

	mu      sync.Mutex
	workers utils.StoppableWorkers
}

// NewLoop constructs a loop. The frequency must be in (0, 200] Hz.
func NewLoop(r *Rig, source FrameSource, frequency float64, logger logging.Logger) (*Loop, error) {
	if frequency <= 0 || frequency > 200 {
		return nil, errors.New("loop frequency shouldn't be 0 or above 200Hz")
	}
	return &Loop{
		rig:       r,
		source:    source,
		frequency: frequency,
		dt:        time.Duration(float64(time.Second) * (1.0 / frequency)),
		logger:    logger,
		frameLog:  rate.Sometimes{First: 1, Interval: 10 * time.Second},
	}, nil
}

// Frequency returns the loop's frequency.
func (l *Loop) Frequency() float64 {
	return l.frequency
}

// Start starts ticking in the background.
func (l *Loop) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.workers != nil {
		return errors.New("loop already running")
	}
	l.logger.Infof("running loop at %1.2fHz (%v)", l.frequency, l.dt)
	ticker := l.rig.Timebase().Clock().Ticker(l.dt)
	l.workers = utils.NewStoppableWorkers(func(ctx context.Context) {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.step(ctx)
			}
		}
	})
	return nil
}

func (l *Loop) step(ctx context.Context) {
	frame, err := l.source.Next(ctx, l.rig.Timebase().Now())
	if err != nil {
		if ctx.Err() == nil {
			l.frameLog.Do(func() {
				l.logger.Warnw("no frame this tick", "error", err)
			})
		}
		return
	}
	l.rig.Tick(frame)
}

// Stop stops the loop and waits for the current tick to finish.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.workers == nil {
		return
	}
	l.logger.Debug("closing loop")
	l.workers.Stop()
	l.workers = nil
}
