package widget

import (
	"fmt"
	"strings"
)

func (s *Store) findLayout(id string) (*DashboardLayout, int) {
	for i, l := range s.state.Layouts {
		if l.ID == id {
			return l, i
		}
	}
	return nil, -1
}

func copyLayout(l *DashboardLayout) DashboardLayout {
	c := *l
	c.Widgets = make([]Widget, len(l.Widgets))
	for i := range l.Widgets {
		c.Widgets[i] = l.Widgets[i].Clone()
	}
	return c
}

func (s *Store) CurrentLayoutID() string { return s.state.CurrentLayoutID }

// CurrentLayout returns a copy of the active layout
func (s *Store) CurrentLayout() DashboardLayout {
	return copyLayout(s.current())
}

func (s *Store) Layout(id string) (DashboardLayout, error) {
	l, _ := s.findLayout(id)
	if l == nil {
		return DashboardLayout{}, fmt.Errorf("%w: %s", ErrLayoutNotFound, id)
	}
	return copyLayout(l), nil
}

func (s *Store) Layouts() []LayoutSummary {
	out := make([]LayoutSummary, 0, len(s.state.Layouts))
	for _, l := range s.state.Layouts {
		out = append(out, LayoutSummary{
			ID:          l.ID,
			Name:        l.Name,
			WidgetCount: len(l.Widgets),
			UpdatedAt:   l.UpdatedAt,
		})
	}
	return out
}

// AllLayouts returns deep copies of every layout, for persistence
func (s *Store) AllLayouts() []DashboardLayout {
	out := make([]DashboardLayout, 0, len(s.state.Layouts))
	for _, l := range s.state.Layouts {
		out = append(out, copyLayout(l))
	}
	return out
}

func (s *Store) CreateLayout(name string) DashboardLayout {
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Layout %d", len(s.state.Layouts)+1)
	}
	l := s.newLayout(name)
	s.state.Layouts = append(s.state.Layouts, l)
	return copyLayout(l)
}

func (s *Store) RenameLayout(id, name string) error {
	l, _ := s.findLayout(id)
	if l == nil {
		return fmt.Errorf("%w: %s", ErrLayoutNotFound, id)
	}
	if name = strings.TrimSpace(name); name != "" {
		l.Name = name
		l.UpdatedAt = s.now()
	}
	return nil
}

func (s *Store) DeleteLayout(id string) error {
	l, i := s.findLayout(id)
	if l == nil {
		return fmt.Errorf("%w: %s", ErrLayoutNotFound, id)
	}
	if id == s.state.CurrentLayoutID {
		return ErrCurrentLayout
	}
	for _, w := range l.Widgets {
		s.retired[w.ID] = struct{}{}
	}
	s.state.Layouts = append(s.state.Layouts[:i], s.state.Layouts[i+1:]...)
	return nil
}

// SwitchLayout makes another layout current. The widget list is swapped
// wholesale, nothing is merged.
func (s *Store) SwitchLayout(id string) error {
	if s.ActiveGesture() != GestureNone {
		return ErrGestureBusy
	}
	l, _ := s.findLayout(id)
	if l == nil {
		return fmt.Errorf("%w: %s", ErrLayoutNotFound, id)
	}
	s.state.CurrentLayoutID = l.ID
	s.state.SelectedWidgetID = ""
	return nil
}

// RestoreLayouts replaces every layout, used when loading a session. Layouts
// without an id get a fresh one. currentID falls back to the first layout.
func (s *Store) RestoreLayouts(layouts []DashboardLayout, currentID string) {
	if len(layouts) == 0 {
		return
	}
	restored := make([]*DashboardLayout, 0, len(layouts))
	seen := make(map[string]struct{}, len(layouts))
	for i := range layouts {
		c := copyLayout(&layouts[i])
		if _, dup := seen[c.ID]; c.ID == "" || dup {
			c.ID = s.newID()
		}
		seen[c.ID] = struct{}{}
		if c.Widgets == nil {
			c.Widgets = []Widget{}
		}
		restored = append(restored, &c)
	}
	s.state.Layouts = restored
	s.state.CurrentLayoutID = restored[0].ID
	for _, l := range restored {
		if l.ID == currentID {
			s.state.CurrentLayoutID = currentID
		}
	}
	s.state.SelectedWidgetID = ""
	s.state.DragState = nil
	s.state.ResizeState = nil
}

// Snapshot returns a copy of the state for callers outside the event loop
func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{
		CurrentLayoutID:  s.state.CurrentLayoutID,
		Layouts:          s.Layouts(),
		Widgets:          s.Widgets(),
		SelectedWidgetID: s.state.SelectedWidgetID,
		Policy:           s.state.Policy,
		Canvas:           s.state.Canvas,
	}
	if d := s.state.DragState; d != nil {
		c := *d
		snap.DragState = &c
	}
	if r := s.state.ResizeState; r != nil {
		c := *r
		snap.ResizeState = &c
	}
	return snap
}
