package force

import "go.uber.org/atomic"

// DefaultCeilingHeight is the assumed ceiling height in meters until one is set.
const DefaultCeilingHeight = 2.3

// Modes are the process-wide operating modes. Setters may be called from any goroutine and
// take effect on the next tick.
type Modes struct {
	fullForce     atomic.Bool
	boundaryOnly  atomic.Bool
	gameStarted   atomic.Bool
	falling       atomic.Bool
	ceilingHeight atomic.Float64
}

// ModeState is a consistent-enough copy of the modes, taken once per tick.
type ModeState struct {
	FullForce     bool    `json:"full_force"`
	BoundaryOnly  bool    `json:"boundary_only"`
	GameStarted   bool    `json:"game_started"`
	Falling       bool    `json:"-"`
	CeilingHeight float64 `json:"ceiling_height_m"`
}

// NewModes returns modes with every flag off and the default ceiling.
func NewModes() *Modes {
	m := &Modes{}
	m.ceilingHeight.Store(DefaultCeilingHeight)
	return m
}

// SetFullForce lifts the low force cap.
func (m *Modes) SetFullForce(on bool) { m.fullForce.Store(on) }

// SetBoundaryOnly restricts the actuators to boundary forces.
func (m *Modes) SetBoundaryOnly(on bool) { m.boundaryOnly.Store(on) }

// SetGameStarted records that the user accepted the terms of use; no force is sent before.
func (m *Modes) SetGameStarted(on bool) { m.gameStarted.Store(on) }

// SetFalling zeroes every force while the user is falling.
func (m *Modes) SetFalling(on bool) { m.falling.Store(on) }

// SetCeilingHeight sets the ceiling height in meters.
func (m *Modes) SetCeilingHeight(meters float64) { m.ceilingHeight.Store(meters) }

// Apply sets every externally controlled mode at once. Falling is detected, not configured, so
// it is left untouched.
func (m *Modes) Apply(state ModeState) {
	m.SetFullForce(state.FullForce)
	m.SetBoundaryOnly(state.BoundaryOnly)
	m.SetGameStarted(state.GameStarted)
	if state.CeilingHeight > 0 {
		m.SetCeilingHeight(state.CeilingHeight)
	}
}

// State returns a copy of the current modes.
func (m *Modes) State() ModeState {
	return ModeState{
		FullForce:     m.fullForce.Load(),
		BoundaryOnly:  m.boundaryOnly.Load(),
		GameStarted:   m.gameStarted.Load(),
		Falling:       m.falling.Load(),
		CeilingHeight: m.ceilingHeight.Load(),
	}
}
