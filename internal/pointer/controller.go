package pointer

import "photobook-render/internal/mathutil"

// Surface is the element a drag session is bound to. Capture/Release scope
// pointer capture; Listen/Unlisten attach and detach the move/up listeners.
type Surface interface {
	Capture(pointerID int)
	Release(pointerID int)
	Listen()
	Unlisten()
}

// Handlers are the session callbacks. Any may be nil.
type Handlers struct {
	OnStart func(ev Event)
	OnMove  func(ev Event, delta, current mathutil.Vec2)
	OnEnd   func(ev Event)
}

// Controller owns one drag session at a time.
type Controller struct {
	Handlers Handlers
	Surface  Surface
	// Scale returns the current editor zoom. Nil means 1.
	Scale    func() float64
	Disabled bool

	state State
}

// New creates a controller. surface may be nil when the host wires events
// some other way.
func New(h Handlers, surface Surface, scale func() float64) *Controller {
	return &Controller{Handlers: h, Surface: surface, Scale: scale}
}

// State returns the current session state.
func (c *Controller) State() State { return c.state }

// Active reports whether a session is in progress.
func (c *Controller) Active() bool { return c.state.Dragging }

// Down begins a drag session. It returns false when disabled or already
// dragging.
func (c *Controller) Down(ev Event) bool {
	return c.step(Down, ev) == EffectBegin
}

// Move feeds a move event to the active session.
func (c *Controller) Move(ev Event) { c.step(Move, ev) }

// Up ends the session for ev's pointer.
func (c *Controller) Up(ev Event) { c.step(Up, ev) }

// Cancel aborts the session for ev's pointer. OnEnd still fires.
func (c *Controller) Cancel(ev Event) { c.step(Cancel, ev) }

// Close tears down an active session without calling OnEnd.
func (c *Controller) Close() {
	if !c.state.Dragging {
		return
	}
	id := c.state.PointerID
	c.state = Idle
	c.detach(id)
}

func (c *Controller) step(in Input, ev Event) Effect {
	prev := c.state
	next, eff := Transition(prev, in, ev, c.Disabled)
	c.state = next

	switch eff {
	case EffectBegin:
		if c.Surface != nil {
			c.Surface.Capture(ev.PointerID)
			c.Surface.Listen()
		}
		if c.Handlers.OnStart != nil {
			c.Handlers.OnStart(ev)
		}
	case EffectMove:
		if c.Handlers.OnMove != nil {
			c.Handlers.OnMove(ev, Delta(prev, ev, c.scale()), ev.Pos())
		}
	case EffectEnd:
		c.detach(prev.PointerID)
		if c.Handlers.OnEnd != nil {
			c.Handlers.OnEnd(ev)
		}
	}
	return eff
}

func (c *Controller) detach(pointerID int) {
	if c.Surface == nil {
		return
	}
	c.Surface.Release(pointerID)
	c.Surface.Unlisten()
}

func (c *Controller) scale() float64 {
	if c.Scale == nil {
		return 1
	}
	return c.Scale()
}
