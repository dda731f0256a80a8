// Package rig runs the force feedback rig: every tick it checks the link to the actuator
// controller, feeds the frame reported by the VR runtime to the force engine and sends the
// resulting angles.
package rig

import (
	"time"

	"go.uber.org/atomic"
	"golang.org/x/time/rate"

	"go.viam.com/forcefeedback/force"
	"go.viam.com/forcefeedback/logging"
	"go.viam.com/forcefeedback/packet"
	"go.viam.com/forcefeedback/transport"
	"go.viam.com/forcefeedback/utils"
)

// A Commander delivers commands to the actuator controller. *transport.Client is one.
type Commander interface {
	SendCommand(left, right int32, mt packet.MessageType, timestamp float32) error
	CheckTimeout() bool
	UpdateVoltage() error
	Voltage() (float32, bool)
	Connected() bool
	HasRoute() bool
	Stats() transport.Stats
}

// Snapshot is the state published after each tick.
type Snapshot struct {
	Tick         uint64
	Time         time.Duration
	Output       force.Output
	Hands        [force.NumHands]force.Display
	NearBoundary [force.NumHands]float64
	Modes        force.ModeState
	Link         transport.Stats
	TimedOut     bool
	Voltage      float32
	Sent         bool
}

// Rig owns one tick of the control loop. It is not safe for concurrent use, except Latest.
type Rig struct {
	engine  *force.Engine
	link    Commander
	tb      *utils.Timebase
	alerter Alerter
	logger  logging.Logger

	fall    *FallDetector
	alerts  alertState
	tick    uint64
	sendLog rate.Sometimes
	latest  atomic.Pointer[Snapshot]
}

// New returns a rig driving engine through link. A nil alerter logs alerts.
func New(engine *force.Engine, link Commander, tb *utils.Timebase, alerter Alerter, logger logging.Logger) *Rig {
	if alerter == nil {
		alerter = LogAlerter(logger)
	}
	return &Rig{
		engine:  engine,
		link:    link,
		tb:      tb,
		alerter: alerter,
		logger:  logger,
		fall:    NewFallDetector(engine.Config().TickSeconds),
		alerts:  newAlertState(),
		sendLog: rate.Sometimes{First: 1, Interval: 10 * time.Second},
	}
}

// Timebase is the clock ticks are stamped with.
func (r *Rig) Timebase() *utils.Timebase {
	return r.tb
}

// Engine returns the force engine.
func (r *Rig) Engine() *force.Engine {
	return r.engine
}

// Latest returns the snapshot of the last tick, or nil before the first one.
func (r *Rig) Latest() *Snapshot {
	return r.latest.Load()
}

// Tick advances the rig by one step with the given frame.
func (r *Rig) Tick(frame Frame) Snapshot {
	now := r.tb.Now()
	modes := r.engine.Modes()
	started := modes.State().GameStarted

	if r.link.Connected() && r.alerts.connected(started) {
		r.alerter.Alert(AlertConnected, 0)
	}
	timedOut := r.link.CheckTimeout()
	if timedOut && r.alerts.disconnected(started) {
		r.alerter.Alert(AlertDisconnected, 0)
	}
	if err := r.link.UpdateVoltage(); err != nil {
		r.sendLog.Do(func() {
			r.logger.Warnw("cannot request voltage", "error", err)
		})
	}
	volts, _ := r.link.Voltage()
	if r.alerts.lowVoltage(volts, now, started) {
		r.alerter.Alert(AlertLowVoltage, volts)
	}

	modes.SetFalling(r.fall.Update(frame.Head))

	dt := r.engine.Config().TickSeconds
	for _, h := range force.Hands {
		c := frame.Contacts[h]
		switch c.Phase {
		case ContactEnter:
			r.engine.ContactEnter(h, force.EffectiveCollisionForce(frame.Shoulders[h], frame.Hands[h], c.Impulse, dt))
		case ContactStay:
			r.engine.ContactStay(h, force.EffectiveCollisionForce(frame.Shoulders[h], frame.Hands[h], c.Impulse, dt))
		case ContactExit:
			r.engine.ContactExit(h)
		case ContactNone:
		}
		r.engine.UpdateBallProximity(h, frame.BallDistance[h])
	}
	for _, h := range force.Hands {
		r.engine.UpdateHand(h, frame.Shoulders[h], frame.Hands[h], now)
	}
	out := r.engine.Arbitrate(now)

	var sent bool
	if r.link.HasRoute() {
		err := r.link.SendCommand(int32(out.Angles[force.Left]), int32(out.Angles[force.Right]), out.MessageType, utils.Seconds(now))
		if err != nil {
			r.sendLog.Do(func() {
				r.logger.Warnw("cannot send command", "error", err)
			})
		}
		sent = err == nil
	}

	r.tick++
	snap := Snapshot{
		Tick:     r.tick,
		Time:     now,
		Output:   out,
		Modes:    modes.State(),
		Link:     r.link.Stats(),
		TimedOut: timedOut,
		Voltage:  volts,
		Sent:     sent,
	}
	for _, h := range force.Hands {
		snap.Hands[h] = r.engine.Display(h, now)
		snap.NearBoundary[h] = r.engine.NearBoundary(h)
	}
	r.latest.Store(&snap)
	return snap
}
