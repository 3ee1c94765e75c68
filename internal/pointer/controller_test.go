package pointer

import (
	"reflect"
	"testing"

	"photobook-render/internal/mathutil"
)

type recordingSurface struct {
	calls []string
}

func (s *recordingSurface) Capture(int) { s.calls = append(s.calls, "capture") }
func (s *recordingSurface) Release(int) { s.calls = append(s.calls, "release") }
func (s *recordingSurface) Listen() { s.calls = append(s.calls, "listen") }
func (s *recordingSurface) Unlisten() { s.calls = append(s.calls, "unlisten") }

func TestSessionLifecycle(t *testing.T) {
	surf := &recordingSurface{}
	var events []string
	var lastDelta, lastPos mathutil.Vec2
	c := New(Handlers{
		OnStart: func(Event) { events = append(events, "start") },
		OnMove: func(_ Event, d, cur mathutil.Vec2) {
			events = append(events, "move")
			lastDelta, lastPos = d, cur
		},
		OnEnd: func(Event) { events = append(events, "end") },
	}, surf, func() float64 { return 2 })

	if !c.Down(Event{PointerID: 1, X: 10, Y: 10}) {
		t.Fatal("Down did not start a session")
	}
	c.Move(Event{PointerID: 1, X: 30, Y: 50})
	if lastDelta != (mathutil.Vec2{X: 10, Y: 20}) {
		t.Fatalf("delta = %+v, want scale-corrected {10 20}", lastDelta)
	}
	if lastPos != (mathutil.Vec2{X: 30, Y: 50}) {
		t.Fatalf("current = %+v", lastPos)
	}
	c.Up(Event{PointerID: 1, X: 30, Y: 50})

	if want := []string{"start", "move", "end"}; !reflect.DeepEqual(events, want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	if want := []string{"capture", "listen", "release", "unlisten"}; !reflect.DeepEqual(surf.calls, want) {
		t.Fatalf("surface = %v, want %v", surf.calls, want)
	}
	if c.Active() {
		t.Fatal("session still active after Up")
	}
}

func TestForeignPointerIgnored(t *testing.T) {
	moves := 0
	c := New(Handlers{OnMove: func(Event, mathutil.Vec2, mathutil.Vec2) { moves++ }}, nil, nil)
	c.Down(Event{PointerID: 1})
	if c.Down(Event{PointerID: 2}) {
		t.Fatal("second pointer started a concurrent session")
	}
	c.Move(Event{PointerID: 2, X: 5})
	c.Up(Event{PointerID: 2})
	if moves != 0 || !c.Active() {
		t.Fatalf("foreign pointer affected session: moves=%d active=%v", moves, c.Active())
	}
	c.Move(Event{PointerID: 1, X: 5})
	if moves != 1 {
		t.Fatalf("moves = %d", moves)
	}
}

func TestDisabledShortCircuits(t *testing.T) {
	surf := &recordingSurface{}
	started := false
	c := New(Handlers{OnStart: func(Event) { started = true }}, surf, nil)
	c.Disabled = true
	if c.Down(Event{PointerID: 1}) || started || len(surf.calls) != 0 {
		t.Fatal("disabled controller started a session")
	}
}

func TestCancelAndCloseRelease(t *testing.T) {
	surf := &recordingSurface{}
	ended := 0
	c := New(Handlers{OnEnd: func(Event) { ended++ }}, surf, nil)

	c.Down(Event{PointerID: 3})
	c.Cancel(Event{PointerID: 3})
	if ended != 1 || c.Active() {
		t.Fatalf("cancel: ended=%d active=%v", ended, c.Active())
	}

	surf.calls = nil
	c.Down(Event{PointerID: 4})
	c.Close()
	if ended != 1 {
		t.Fatal("Close must not fire OnEnd")
	}
	if want := []string{"capture", "listen", "release", "unlisten"}; !reflect.DeepEqual(surf.calls, want) {
		t.Fatalf("surface = %v", surf.calls)
	}
	c.Close()
	if len(surf.calls) != 4 {
		t.Fatal("Close on idle controller touched the surface")
	}
}

func TestTransitionIsPure(t *testing.T) {
	s, eff := Transition(Idle, Move, Event{PointerID: 1}, false)
	if s != Idle || eff != EffectNone {
		t.Fatalf("move while idle: %+v %v", s, eff)
	}
	s, eff = Transition(Idle, Down, Event{PointerID: 7, X: 1, Y: 2}, false)
	if !s.Dragging || s.PointerID != 7 || s.Start != (mathutil.Vec2{X: 1, Y: 2}) || eff != EffectBegin {
		t.Fatalf("down: %+v %v", s, eff)
	}
	s, eff = Transition(s, Up, Event{PointerID: 7}, false)
	if s != Idle || eff != EffectEnd {
		t.Fatalf("up: %+v %v", s, eff)
	}
}
