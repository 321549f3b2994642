package widget

type Gesture int

const (
	GestureNone Gesture = iota
	GestureDrag
	GestureResize
)

func (g Gesture) String() string {
	switch g {
	case GestureDrag:
		return "drag"
	case GestureResize:
		return "resize"
	default:
		return "none"
	}
}

func (s *Store) ActiveGesture() Gesture {
	switch {
	case s.state.DragState != nil:
		return GestureDrag
	case s.state.ResizeState != nil:
		return GestureResize
	default:
		return GestureNone
	}
}

// BeginDrag occupies the single gesture slot
func (s *Store) BeginDrag(d DragState) error {
	if s.ActiveGesture() != GestureNone {
		return ErrGestureBusy
	}
	if s.indexOf(d.WidgetID) < 0 {
		return ErrNotFound
	}
	s.state.DragState = &d
	return nil
}

// BeginResize occupies the single gesture slot
func (s *Store) BeginResize(r ResizeState) error {
	if s.ActiveGesture() != GestureNone {
		return ErrGestureBusy
	}
	if s.indexOf(r.WidgetID) < 0 {
		return ErrNotFound
	}
	s.state.ResizeState = &r
	return nil
}

// Drag returns a copy of the active drag state, or nil
func (s *Store) Drag() *DragState {
	if s.state.DragState == nil {
		return nil
	}
	c := *s.state.DragState
	return &c
}

// Resize returns a copy of the active resize state, or nil
func (s *Store) Resize() *ResizeState {
	if s.state.ResizeState == nil {
		return nil
	}
	c := *s.state.ResizeState
	return &c
}

func (s *Store) UpdateDrag(fn func(*DragState)) error {
	if s.state.DragState == nil {
		return ErrNoGesture
	}
	fn(s.state.DragState)
	return nil
}

func (s *Store) UpdateResize(fn func(*ResizeState)) error {
	if s.state.ResizeState == nil {
		return ErrNoGesture
	}
	fn(s.state.ResizeState)
	return nil
}

// EndGesture discards any transient gesture state
func (s *Store) EndGesture() {
	s.state.DragState = nil
	s.state.ResizeState = nil
}
