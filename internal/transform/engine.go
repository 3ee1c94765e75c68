package transform

import (
	"photobook-render/internal/design"
	"photobook-render/internal/mathutil"
	"photobook-render/internal/pointer"
)

// Sink receives partial updates. It is owned by the document store; the
// engine never keeps object state of its own.
type Sink interface {
	Update(objectID string, p design.Patch)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(objectID string, p design.Patch)

func (f SinkFunc) Update(objectID string, p design.Patch) { f(objectID, p) }

// Source returns the current attributes of the object being manipulated.
type Source func() design.Frame

// BoundsFunc returns the on-screen bounding box of the rendered object, or
// false when it is not laid out.
type BoundsFunc func() (mathutil.Rect, bool)

// Engine binds gestures for objects to drag controllers.
type Engine struct {
	Sink  Sink
	Scale func() float64
}

// NewEngine creates an engine that reports updates to sink.
func NewEngine(sink Sink, scale func() float64) *Engine {
	return &Engine{Sink: sink, Scale: scale}
}

// gesture is the per-handle Idle -> Dragging(start) -> Idle state.
type gesture struct {
	src   Source
	start *design.Frame
}

func (g *gesture) begin() design.Frame {
	f := g.src()
	g.start = &f
	return f
}

func (g *gesture) end() { g.start = nil }

func (e *Engine) emit(id string, p design.Patch) {
	if e.Sink == nil || p.Empty() {
		return
	}
	e.Sink.Update(id, p)
}

// Move binds a drag-to-move gesture.
func (e *Engine) Move(src Source, surface pointer.Surface) *pointer.Controller {
	g := &gesture{src: src}
	return pointer.New(pointer.Handlers{
		OnStart: func(pointer.Event) { g.begin() },
		OnMove: func(_ pointer.Event, delta, _ mathutil.Vec2) {
			if g.start == nil {
				return
			}
			e.emit(g.start.ID, Move(*g.start, delta))
		},
		OnEnd: func(pointer.Event) { g.end() },
	}, surface, e.Scale)
}

// Rotate binds a rotation grip. The angle is measured around the centre of
// the object's on-screen bounding box.
func (e *Engine) Rotate(src Source, bounds BoundsFunc, surface pointer.Surface) *pointer.Controller {
	g := &gesture{src: src}
	var center mathutil.Vec2
	var last, sweep float64

	return pointer.New(pointer.Handlers{
		OnStart: func(ev pointer.Event) {
			g.begin()
			box, ok := bounds()
			if !ok {
				g.end()
				return
			}
			center = box.Center()
			last = mathutil.AngleDeg(ev.Pos(), center)
			sweep = 0
		},
		OnMove: func(_ pointer.Event, _, current mathutil.Vec2) {
			if g.start == nil {
				return
			}
			angle := mathutil.AngleDeg(current, center)
			sweep += mathutil.AngleDelta(last, angle)
			last = angle
			e.emit(g.start.ID, Rotate(g.start.Rotation, sweep))
		},
		OnEnd: func(pointer.Event) { g.end() },
	}, surface, e.Scale)
}

// Resize binds a resize grip. An unknown handle yields a controller whose
// moves never produce updates.
func (e *Engine) Resize(src Source, h Handle, surface pointer.Surface) *pointer.Controller {
	g := &gesture{src: src}
	return pointer.New(pointer.Handlers{
		OnStart: func(pointer.Event) { g.begin() },
		OnMove: func(_ pointer.Event, delta, _ mathutil.Vec2) {
			if g.start == nil {
				return
			}
			if p, ok := Resize(*g.start, h, delta); ok {
				e.emit(g.start.ID, p)
			}
		},
		OnEnd: func(pointer.Event) { g.end() },
	}, surface, e.Scale)
}

// Pan binds content panning. Frames whose media fits are left alone.
func (e *Engine) Pan(src Source, surface pointer.Surface) *pointer.Controller {
	g := &gesture{src: src}
	return pointer.New(pointer.Handlers{
		OnStart: func(pointer.Event) {
			if f := g.begin(); !f.Pannable() {
				g.end()
			}
		},
		OnMove: func(_ pointer.Event, delta, _ mathutil.Vec2) {
			if g.start == nil {
				return
			}
			if p, ok := Pan(*g.start, delta); ok {
				e.emit(g.start.ID, p)
			}
		},
		OnEnd: func(pointer.Event) { g.end() },
	}, surface, e.Scale)
}
