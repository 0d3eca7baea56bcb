package cmd

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/go-drift/widgetcore/cmd/widgetcore/internal/config"
	"github.com/go-drift/widgetcore/pkg/dispatch"
	"github.com/go-drift/widgetcore/pkg/timer"
)

// sceneStats is only touched from the main loop.
type sceneStats struct {
	presses       int
	releases      int
	notifications int
	released      int
	longestHold   uint64
}

// widget is a rectangular hit box that captures the pointer while pressed
// and tells its parent about presses and releases.
type widget struct {
	dispatch.Base
	name      string
	d         *dispatch.Dispatcher
	log       zerolog.Logger
	stats     *sceneStats
	pressed   bool
	pressedAt uint64
}

func (w *widget) HandleMessage(kind dispatch.Kind, p1, p2 any) int {
	switch {
	case kind == dispatch.MsgUpdate:
		w.log.Trace().Str("widget", w.name).Msg("update")
		return 0
	case kind.IsPointer():
		x, _ := p1.(int)
		y, _ := p2.(int)
		return w.handlePointer(kind, x, y)
	case kind.IsNotify():
		w.stats.notifications++
		w.log.Debug().
			Str("widget", w.name).
			Stringer("notify", kind).
			Interface("child", p1).
			Msg("child notification")
		return 1
	}
	return 0
}

func (w *widget) handlePointer(kind dispatch.Kind, x, y int) int {
	inside := w.AbsoluteBounds().Contains(x, y)
	switch kind {
	case dispatch.MsgPointerDown:
		if !inside {
			// A press elsewhere ends any capture whose release was lost.
			w.pressed = false
			return 0
		}
		w.pressed = true
		w.pressedAt = timer.Ticks()
		w.stats.presses++
		w.d.ParentNotify(w, dispatch.NotifyButtonPressed)
		return 1
	case dispatch.MsgPointerMove:
		if !w.pressed {
			return 0
		}
		w.d.ParentNotify(w, dispatch.NotifyMove)
		return 1
	case dispatch.MsgPointerUp:
		if !w.pressed {
			return 0
		}
		w.pressed = false
		held := timer.Ticks() - w.pressedAt
		w.stats.releases++
		w.stats.longestHold = max(w.stats.longestHold, held)
		w.d.ParentNotify(w, dispatch.NotifyButtonReleased)
		w.log.Debug().Str("widget", w.name).Uint64("held_ms", held).Bool("inside", inside).Msg("released")
		return 1
	}
	return 0
}

func (w *widget) Release() {
	w.stats.released++
}

// scene is the widget tree built from configuration.
type scene struct {
	d       *dispatch.Dispatcher
	widgets []*widget
	byID    map[dispatch.ID]*widget
	stats   sceneStats
}

func buildScene(d *dispatch.Dispatcher, decls []config.Widget, log zerolog.Logger) (*scene, error) {
	s := &scene{d: d, byID: make(map[dispatch.ID]*widget, len(decls))}
	for _, decl := range decls {
		id := dispatch.ID(decl.ID)
		if _, dup := s.byID[id]; dup {
			return nil, fmt.Errorf("duplicate widget id %d", decl.ID)
		}

		var parent dispatch.Entity = d.Root()
		if decl.Parent != 0 {
			p, ok := s.byID[dispatch.ID(decl.Parent)]
			if !ok {
				return nil, fmt.Errorf("widget %d: unknown parent %d", decl.ID, decl.Parent)
			}
			parent = p
		}

		name := decl.Name
		if name == "" {
			name = fmt.Sprintf("widget-%d", decl.ID)
		}
		w := &widget{name: name, d: d, log: log, stats: &s.stats}
		w.Init(w, id, parent, dispatch.RectOf(decl.X, decl.Y, decl.Width, decl.Height))

		s.widgets = append(s.widgets, w)
		s.byID[id] = w
	}
	return s, nil
}

// targets returns the screen rectangles of the leaf widgets, in
// declaration order.
func (s *scene) targets() []dispatch.Rect {
	var out []dispatch.Rect
	for _, w := range s.widgets {
		if w.Node().FirstChild() == nil {
			out = append(out, w.AbsoluteBounds())
		}
	}
	return out
}

// destroy tears down every top-level widget and returns how many widgets
// were released.
func (s *scene) destroy() int {
	var top []dispatch.Entity
	for c := range s.d.Root().Children() {
		top = append(top, c)
	}
	for _, e := range top {
		s.d.Destroy(e)
	}
	return s.stats.released
}

func nameOf(e dispatch.Entity) string {
	if w, ok := e.(*widget); ok {
		return w.name
	}
	return "root"
}

// screenBounds returns the smallest screen rectangle anchored at the origin
// that covers every top-level widget.
func screenBounds(decls []config.Widget) dispatch.Rect {
	width, height := 1, 1
	for _, decl := range decls {
		if decl.Parent != 0 {
			continue
		}
		width = max(width, decl.X+decl.Width)
		height = max(height, decl.Y+decl.Height)
	}
	return dispatch.RectOf(0, 0, width, height)
}
