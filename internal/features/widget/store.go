package widget

import (
	"fmt"
	"strings"
	"time"

	"eegdash/pkg/geometry"

	"github.com/google/uuid"
)

const DefaultLayoutName = "Default"

// DefaultPosition is used when neither the add request nor the kind provide one
var DefaultPosition = geometry.Point{X: 20, Y: 20}

// Store owns a DashboardState and is the only code that mutates it. It does
// not validate geometry; callers run proposals through the layout engine
// first.
type Store struct {
	state    *DashboardState
	registry *Registry
	retired  map[string]struct{}
	now      func() time.Time
	newID    func() string
}

func NewStore(registry *Registry, policy Policy, canvas geometry.Size) *Store {
	if registry == nil {
		registry = DefaultRegistry()
	}
	s := &Store{
		state: &DashboardState{
			Policy: policy,
			Canvas: canvas,
		},
		registry: registry,
		retired:  make(map[string]struct{}),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	layout := s.newLayout(DefaultLayoutName)
	s.state.Layouts = append(s.state.Layouts, layout)
	s.state.CurrentLayoutID = layout.ID
	return s
}

func (s *Store) Registry() *Registry { return s.registry }

func (s *Store) Policy() Policy { return s.state.Policy }

func (s *Store) SetPolicy(p Policy) { s.state.Policy = p }

func (s *Store) Canvas() geometry.Size { return s.state.Canvas }

func (s *Store) SetCanvas(size geometry.Size) {
	s.state.Canvas = geometry.Size{Width: geometry.Sanitize(size.Width), Height: geometry.Sanitize(size.Height)}
}

func (s *Store) newLayout(name string) *DashboardLayout {
	now := s.now()
	return &DashboardLayout{
		ID:        s.freshID(),
		Name:      name,
		Widgets:   []Widget{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Store) freshID() string {
	for {
		id := s.newID()
		if _, used := s.retired[id]; used {
			continue
		}
		if s.indexOf(id) >= 0 {
			continue
		}
		return id
	}
}

func (s *Store) current() *DashboardLayout {
	for _, l := range s.state.Layouts {
		if l.ID == s.state.CurrentLayoutID {
			return l
		}
	}
	// CurrentLayoutID always points at an existing layout
	panic("widget store: current layout missing")
}

func (s *Store) touch() {
	s.current().UpdatedAt = s.now()
}

func (s *Store) indexOf(id string) int {
	for _, l := range s.state.Layouts {
		if l.ID != s.state.CurrentLayoutID {
			continue
		}
		for i := range l.Widgets {
			if l.Widgets[i].ID == id {
				return i
			}
		}
	}
	return -1
}

func (s *Store) find(id string) (*Widget, error) {
	i := s.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &s.current().Widgets[i], nil
}

// Widget returns a copy of the widget with the given id
func (s *Store) Widget(id string) (*Widget, error) {
	w, err := s.find(id)
	if err != nil {
		return nil, err
	}
	c := w.Clone()
	return &c, nil
}

// Widgets returns copies of the current layout's widgets in z-order
func (s *Store) Widgets() []Widget {
	src := s.current().Widgets
	out := make([]Widget, len(src))
	for i := range src {
		out[i] = src[i].Clone()
	}
	return out
}

func (s *Store) AddWidget(spec Spec) (*Widget, error) {
	kind, ok := s.registry.Lookup(spec.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %s (known: %s)", ErrUnknownWidgetType, spec.Type, strings.Join(s.registry.Types(), ", "))
	}

	w := Widget{
		ID:       s.freshID(),
		Title:    spec.Title,
		Type:     spec.Type,
		Position: DefaultPosition,
		Size:     kind.DefaultSize,
		MinSize:  kind.MinSize,
		MaxSize:  kind.MaxSize,
		Data:     spec.Data,
		Settings: spec.Settings,
	}
	if w.Title == "" {
		w.Title = kind.Title
	}
	if spec.Position != nil {
		w.Position = geometry.Point{X: geometry.Sanitize(spec.Position.X), Y: geometry.Sanitize(spec.Position.Y)}
	}
	if spec.Size != nil && spec.Size.Width > 0 && spec.Size.Height > 0 {
		w.Size = *spec.Size
	}
	if spec.MinSize != nil {
		w.MinSize = spec.MinSize
	}
	if spec.MaxSize != nil {
		w.MaxSize = spec.MaxSize
	}
	if err := checkBounds(w.MinSize, w.MaxSize); err != nil {
		return nil, err
	}
	w.Size = geometry.Clamp(w.Size, w.MinSize, w.MaxSize)
	w = w.Clone()

	l := s.current()
	l.Widgets = append(l.Widgets, w)
	s.touch()

	c := w.Clone()
	return &c, nil
}

func checkBounds(min, max *geometry.Size) error {
	if min == nil || max == nil {
		return nil
	}
	if (max.Width > 0 && min.Width > max.Width) || (max.Height > 0 && min.Height > max.Height) {
		return ErrInvalidBounds
	}
	return nil
}

func (s *Store) UpdateWidget(id string, patch Patch) (*Widget, error) {
	w, err := s.find(id)
	if err != nil {
		return nil, err
	}

	if patch.IsMaximized != nil && *patch.IsMaximized && w.IsPopOut {
		return nil, ErrFlagConflict
	}
	min, max := w.MinSize, w.MaxSize
	if patch.MinSize != nil {
		min = patch.MinSize
	}
	if patch.MaxSize != nil {
		max = patch.MaxSize
	}
	if err := checkBounds(min, max); err != nil {
		return nil, err
	}

	if patch.Title != nil {
		w.Title = *patch.Title
	}
	if patch.Position != nil {
		w.Position = *patch.Position
	}
	if patch.Size != nil {
		w.Size = *patch.Size
	}
	if patch.MinSize != nil {
		v := *patch.MinSize
		w.MinSize = &v
	}
	if patch.MaxSize != nil {
		v := *patch.MaxSize
		w.MaxSize = &v
	}
	if patch.IsMinimized != nil {
		w.IsMinimized = *patch.IsMinimized
	}
	if patch.IsMaximized != nil {
		w.IsMaximized = *patch.IsMaximized
	}
	if patch.Data != nil {
		w.Data = patch.Data
	}
	if patch.Settings != nil {
		if w.Settings == nil {
			w.Settings = make(map[string]any, len(patch.Settings))
		}
		for k, v := range patch.Settings {
			if v == nil {
				delete(w.Settings, k)
				continue
			}
			w.Settings[k] = v
		}
	}
	s.touch()

	c := w.Clone()
	return &c, nil
}

func (s *Store) RemoveWidget(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	l := s.current()
	l.Widgets = append(l.Widgets[:i], l.Widgets[i+1:]...)
	s.retired[id] = struct{}{}
	if s.state.SelectedWidgetID == id {
		s.state.SelectedWidgetID = ""
	}
	s.touch()
	return nil
}

// BringToFront moves the widget to the top of the z-order
func (s *Store) BringToFront(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	l := s.current()
	w := l.Widgets[i]
	l.Widgets = append(l.Widgets[:i], l.Widgets[i+1:]...)
	l.Widgets = append(l.Widgets, w)
	s.touch()
	return nil
}

func (s *Store) SelectWidget(id string) error {
	if s.indexOf(id) < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.state.SelectedWidgetID = id
	return nil
}

func (s *Store) ClearSelection() {
	s.state.SelectedWidgetID = ""
}

func (s *Store) Selected() string { return s.state.SelectedWidgetID }

// ReplaceWidgets swaps the current layout's widgets for list, dropping
// entries with an empty or repeated id. The dropped ids are returned.
func (s *Store) ReplaceWidgets(list []Widget) []string {
	seen := make(map[string]struct{}, len(list))
	kept := make([]Widget, 0, len(list))
	var dropped []string
	for _, w := range list {
		if w.ID == "" {
			dropped = append(dropped, w.ID)
			continue
		}
		if _, dup := seen[w.ID]; dup {
			dropped = append(dropped, w.ID)
			continue
		}
		seen[w.ID] = struct{}{}
		kept = append(kept, w.Clone())
	}
	l := s.current()
	l.Widgets = kept
	s.state.SelectedWidgetID = ""
	s.touch()
	return dropped
}

// MarkPoppedOut snapshots the widget's geometry and flags it popped out.
// Maximize is cleared since the two states are exclusive.
func (s *Store) MarkPoppedOut(id string) (*Widget, error) {
	w, err := s.find(id)
	if err != nil {
		return nil, err
	}
	pos, size := w.Position, w.Size
	w.PreviousPosition = &pos
	w.PreviousSize = &size
	w.IsPopOut = true
	w.IsMaximized = false
	s.touch()
	c := w.Clone()
	return &c, nil
}

// MarkPoppedIn applies the restored geometry and clears the pop-out snapshot
func (s *Store) MarkPoppedIn(id string, rect geometry.Rect, minimized bool) (*Widget, error) {
	w, err := s.find(id)
	if err != nil {
		return nil, err
	}
	w.Position = rect.Position()
	w.Size = rect.Size()
	w.PreviousPosition = nil
	w.PreviousSize = nil
	w.IsPopOut = false
	if minimized {
		w.IsMinimized = true
	}
	s.touch()
	c := w.Clone()
	return &c, nil
}
