// Package pointer implements a single-pointer drag session as an explicit
// state machine. Transitions are pure; capture and listener bookkeeping are
// returned as effects and performed by Controller.
package pointer

import "photobook-render/internal/mathutil"

// Event is a pointer event in screen coordinates.
type Event struct {
	PointerID int
	X, Y      float64
}

// Pos returns the event position.
func (e Event) Pos() mathutil.Vec2 { return mathutil.Vec2{X: e.X, Y: e.Y} }

// State is Idle (Dragging == false) or Dragging with the session snapshot.
type State struct {
	Dragging  bool
	PointerID int
	Start     mathutil.Vec2
}

// Idle is the zero state.
var Idle = State{}

// Input kinds.
type Input int

const (
	Down Input = iota
	Move
	Up
	Cancel
)

// Effect is a side effect a transition asks the controller to perform.
type Effect int

const (
	EffectNone Effect = iota
	// EffectBegin: capture the pointer, attach move/up listeners, call OnStart.
	EffectBegin
	// EffectMove: call OnMove with the scale-corrected delta.
	EffectMove
	// EffectEnd: release capture, detach listeners, call OnEnd.
	EffectEnd
)

// Transition is the pure drag state machine.
func Transition(s State, in Input, ev Event, disabled bool) (State, Effect) {
	switch in {
	case Down:
		if disabled || s.Dragging {
			return s, EffectNone
		}
		return State{Dragging: true, PointerID: ev.PointerID, Start: ev.Pos()}, EffectBegin
	case Move:
		if !s.Dragging || ev.PointerID != s.PointerID {
			return s, EffectNone
		}
		return s, EffectMove
	case Up, Cancel:
		if !s.Dragging || ev.PointerID != s.PointerID {
			return s, EffectNone
		}
		return Idle, EffectEnd
	}
	return s, EffectNone
}

// Delta converts a screen displacement into design-space units.
func Delta(s State, ev Event, scale float64) mathutil.Vec2 {
	if scale <= 0 {
		scale = 1
	}
	return ev.Pos().Sub(s.Start).Scale(1 / scale)
}
