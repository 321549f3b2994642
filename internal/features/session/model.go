package session

import (
	"time"

	"eegdash/internal/features/widget"
)

// CurrentVersion is the schema version written by this build
const CurrentVersion = 2

const DefaultActiveTab = "files"

type TimeWindow struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// FileManagerState is the file browser's part of the session
type FileManagerState struct {
	SelectedFileID     string         `json:"selectedFileId,omitempty"`
	SelectedChannelIDs []string       `json:"selectedChannelIds"`
	ActiveFilters      map[string]any `json:"activeFilters"`
	TimeWindow         TimeWindow     `json:"timeWindow"`
	ExpandedFolders    []string       `json:"expandedFolders"`
	SortBy             string         `json:"sortBy"`
	SortOrder          string         `json:"sortOrder"`
}

// SessionState is the persisted record
type SessionState struct {
	Version         int                      `json:"version"`
	ActiveTab       string                   `json:"activeTab"`
	PanelSizes      []float64                `json:"panelSizes"`
	FileManager     FileManagerState         `json:"fileManager"`
	UIElements      []widget.Widget          `json:"uiElements"`
	Layouts         []widget.DashboardLayout `json:"layouts,omitempty"`
	CurrentLayoutID string                   `json:"currentLayoutId,omitempty"`
	SavedAt         time.Time                `json:"savedAt,omitempty"`
}

// DefaultSession is what a user without a usable stored record starts with
func DefaultSession() SessionState {
	return SessionState{
		Version:    CurrentVersion,
		ActiveTab:  DefaultActiveTab,
		PanelSizes: []float64{25, 75},
		FileManager: FileManagerState{
			SelectedChannelIDs: []string{},
			ActiveFilters:      map[string]any{},
			TimeWindow:         TimeWindow{Start: 0, End: 30},
			ExpandedFolders:    []string{},
			SortBy:             "name",
			SortOrder:          "asc",
		},
		UIElements: []widget.Widget{},
	}
}

// normalize replaces nil collections so that a loaded record marshals the
// same way as a default one
func (s *SessionState) normalize() {
	if s.PanelSizes == nil {
		s.PanelSizes = []float64{}
	}
	if s.UIElements == nil {
		s.UIElements = []widget.Widget{}
	}
	if s.FileManager.SelectedChannelIDs == nil {
		s.FileManager.SelectedChannelIDs = []string{}
	}
	if s.FileManager.ActiveFilters == nil {
		s.FileManager.ActiveFilters = map[string]any{}
	}
	if s.FileManager.ExpandedFolders == nil {
		s.FileManager.ExpandedFolders = []string{}
	}
}

// Patch is a partial session update. Nil fields keep their saved value.
type Patch struct {
	ActiveTab       *string                  `json:"activeTab,omitempty"`
	PanelSizes      []float64                `json:"panelSizes,omitempty"`
	FileManager     *FileManagerState        `json:"fileManager,omitempty"`
	UIElements      []widget.Widget          `json:"uiElements,omitempty"`
	Layouts         []widget.DashboardLayout `json:"layouts,omitempty"`
	CurrentLayoutID *string                  `json:"currentLayoutId,omitempty"`
}

func (s SessionState) apply(p Patch) SessionState {
	if p.ActiveTab != nil {
		s.ActiveTab = *p.ActiveTab
	}
	if p.PanelSizes != nil {
		s.PanelSizes = append([]float64(nil), p.PanelSizes...)
	}
	if p.FileManager != nil {
		s.FileManager = *p.FileManager
	}
	if p.UIElements != nil {
		s.UIElements = cloneWidgets(p.UIElements)
	}
	if p.Layouts != nil {
		s.Layouts = make([]widget.DashboardLayout, len(p.Layouts))
		for i, l := range p.Layouts {
			l.Widgets = cloneWidgets(l.Widgets)
			s.Layouts[i] = l
		}
	}
	if p.CurrentLayoutID != nil {
		s.CurrentLayoutID = *p.CurrentLayoutID
	}
	return s.Clone()
}

func cloneWidgets(in []widget.Widget) []widget.Widget {
	out := make([]widget.Widget, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

// Clone returns a copy sharing no slices or maps with s
func (s SessionState) Clone() SessionState {
	c := s
	c.PanelSizes = append([]float64(nil), s.PanelSizes...)
	c.UIElements = cloneWidgets(s.UIElements)
	if s.Layouts != nil {
		c.Layouts = make([]widget.DashboardLayout, len(s.Layouts))
		for i, l := range s.Layouts {
			l.Widgets = cloneWidgets(l.Widgets)
			c.Layouts[i] = l
		}
	}
	c.FileManager.SelectedChannelIDs = append([]string(nil), s.FileManager.SelectedChannelIDs...)
	c.FileManager.ExpandedFolders = append([]string(nil), s.FileManager.ExpandedFolders...)
	if s.FileManager.ActiveFilters != nil {
		c.FileManager.ActiveFilters = make(map[string]any, len(s.FileManager.ActiveFilters))
		for k, v := range s.FileManager.ActiveFilters {
			c.FileManager.ActiveFilters[k] = v
		}
	}
	c.normalize()
	return c
}
