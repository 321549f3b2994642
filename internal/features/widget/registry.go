package widget

import (
	"fmt"
	"sort"
	"sync"

	"eegdash/pkg/geometry"
)

// Content is whatever a kind's factory produces for a widget. The engine
// never inspects it.
type Content any

// Kind describes one widget type: its defaults and the factory that builds
// its content.
type Kind struct {
	Type        string
	Title       string
	DefaultSize geometry.Size
	MinSize     *geometry.Size
	MaxSize     *geometry.Size
	New         func(data any, settings map[string]any) Content
}

// Registry maps a type tag to its Kind. New kinds are added by registration.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]Kind
}

func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]Kind)}
}

func (r *Registry) Register(kind Kind) error {
	if kind.Type == "" {
		return fmt.Errorf("widget kind requires a type")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.kinds[kind.Type]; exists {
		return fmt.Errorf("widget kind '%s' already registered", kind.Type)
	}
	r.kinds[kind.Type] = kind
	return nil
}

func (r *Registry) Lookup(typ string) (Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.kinds[typ]
	return k, ok
}

// Types returns the registered type tags in sorted order
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.kinds))
	for t := range r.kinds {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Build runs the kind's factory for w. Kinds without a factory pass the
// widget data through unchanged.
func (r *Registry) Build(w *Widget) (Content, error) {
	kind, ok := r.Lookup(w.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownWidgetType, w.Type)
	}
	if kind.New == nil {
		return w.Data, nil
	}
	return kind.New(w.Data, w.Settings), nil
}

// DefaultRegistry returns the registry with the built-in EEG panel kinds
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, k := range []Kind{
		{Type: "file-browser", Title: "Files", DefaultSize: geometry.Size{Width: 300, Height: 400}, MinSize: &geometry.Size{Width: 200, Height: 200}},
		{Type: "channel-selector", Title: "Channels", DefaultSize: geometry.Size{Width: 300, Height: 300}, MinSize: &geometry.Size{Width: 160, Height: 120}},
		{Type: "eeg-time-series", Title: "EEG Time Series", DefaultSize: geometry.Size{Width: 600, Height: 300}, MinSize: &geometry.Size{Width: 300, Height: 200}},
		{Type: "dda-heatmap", Title: "DDA Heatmap", DefaultSize: geometry.Size{Width: 500, Height: 400}, MinSize: &geometry.Size{Width: 300, Height: 200}},
		{Type: "dda-line-plot", Title: "DDA Line Plot", DefaultSize: geometry.Size{Width: 500, Height: 300}, MinSize: &geometry.Size{Width: 300, Height: 200}},
		{Type: "dda-results", Title: "DDA Results", DefaultSize: geometry.Size{Width: 400, Height: 300}, MinSize: &geometry.Size{Width: 200, Height: 150}},
		{Type: "annotations", Title: "Annotations", DefaultSize: geometry.Size{Width: 300, Height: 200}, MinSize: &geometry.Size{Width: 200, Height: 100}},
		{Type: "analysis-settings", Title: "Analysis Settings", DefaultSize: geometry.Size{Width: 300, Height: 200}, MinSize: &geometry.Size{Width: 200, Height: 150}, MaxSize: &geometry.Size{Width: 800, Height: 800}},
	} {
		// built-in types are unique
		_ = r.Register(k)
	}
	return r
}
