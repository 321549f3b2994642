package session

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"eegdash/internal/features/widget"
	"eegdash/pkg/geometry"

	"go.uber.org/zap"
)

type countingStorage struct {
	*MemoryStorage
	mu   sync.Mutex
	sets int
}

func (c *countingStorage) Set(ctx context.Context, key, value string) error {
	c.mu.Lock()
	c.sets++
	c.mu.Unlock()
	return c.MemoryStorage.Set(ctx, key, value)
}

func (c *countingStorage) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets
}

type fakeIndex struct {
	files map[string][]string
	err   error
}

func (f fakeIndex) Exists(_ context.Context, id string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.files[id]
	return ok, nil
}

func (f fakeIndex) Channels(_ context.Context, id string) ([]string, error) {
	return f.files[id], nil
}

func newService(storage StorageAdapter, files FileIndex) *SessionServiceImpl {
	return NewSessionService(Options{
		Storage:  storage,
		Key:      "session:test",
		Files:    files,
		Debounce: time.Hour,
		Logger:   zap.NewNop(),
	})
}

func TestSessionRoundTrip(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()

	w := widget.Widget{
		ID:       "w1",
		Title:    "DDA Results",
		Type:     "dda-results",
		Position: geometry.Point{X: 20, Y: 20},
		Size:     geometry.Size{Width: 300, Height: 200},
		MinSize:  &geometry.Size{Width: 200, Height: 150},
		Settings: map[string]any{"colormap": "viridis"},
	}
	tab := "dda"
	fm := FileManagerState{
		SelectedFileID:     "f1",
		SelectedChannelIDs: []string{"Fp1", "Fp2"},
		ActiveFilters:      map[string]any{"format": "edf"},
		TimeWindow:         TimeWindow{Start: 10, End: 40},
		ExpandedFolders:    []string{"/data"},
		SortBy:             "date",
		SortOrder:          "desc",
	}

	svc := newService(storage, nil)
	svc.SaveSession(Patch{ActiveTab: &tab, PanelSizes: []float64{30, 70}, FileManager: &fm, UIElements: []widget.Widget{w}})
	if err := svc.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	got, report := newService(storage, nil).LoadSession(ctx)
	if err := report.Err(); err != nil || report.Defaulted {
		t.Fatalf("LoadSession() report = %+v, err = %v", report, err)
	}
	if got.ActiveTab != "dda" {
		t.Errorf("ActiveTab = %q, want dda", got.ActiveTab)
	}
	if !reflect.DeepEqual(got.UIElements, []widget.Widget{w}) {
		t.Errorf("UIElements = %+v, want %+v", got.UIElements, []widget.Widget{w})
	}
	if !reflect.DeepEqual(got.FileManager, fm) {
		t.Errorf("FileManager = %+v, want %+v", got.FileManager, fm)
	}
	if !reflect.DeepEqual(got.PanelSizes, []float64{30, 70}) {
		t.Errorf("PanelSizes = %v", got.PanelSizes)
	}
	if got.Version != CurrentVersion {
		t.Errorf("Version = %d", got.Version)
	}
}

func TestLoadSessionFallbacks(t *testing.T) {
	tests := []struct {
		name       string
		stored     *string
		wantErr    bool
		wantFound  bool
		wantActive string
	}{
		{name: "Missing", stored: nil, wantActive: DefaultActiveTab},
		{name: "Corrupt", stored: ptr("{not json"), wantErr: true, wantFound: true, wantActive: DefaultActiveTab},
		{name: "Not An Object", stored: ptr(`["a"]`), wantErr: true, wantFound: true, wantActive: DefaultActiveTab},
		{name: "Null", stored: ptr(`null`), wantErr: true, wantFound: true, wantActive: DefaultActiveTab},
		{name: "Wrong Field Type", stored: ptr(`{"version":2,"activeTab":5}`), wantErr: true, wantFound: true, wantActive: DefaultActiveTab},
		{name: "Future Version", stored: ptr(`{"version":9,"activeTab":"dda"}`), wantErr: true, wantFound: true, wantActive: DefaultActiveTab},
		{name: "Partial Record", stored: ptr(`{"version":2,"activeTab":"annotations"}`), wantFound: true, wantActive: "annotations"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := NewMemoryStorage()
			if tt.stored != nil {
				_ = storage.Set(context.Background(), "session:test", *tt.stored)
			}

			got, report := newService(storage, nil).LoadSession(context.Background())
			if got.ActiveTab != tt.wantActive {
				t.Errorf("ActiveTab = %q, want %q", got.ActiveTab, tt.wantActive)
			}
			if report.Found != tt.wantFound {
				t.Errorf("Found = %v, want %v", report.Found, tt.wantFound)
			}
			if tt.wantErr != errors.Is(report.Err(), ErrPersistenceRead) {
				t.Errorf("Report error = %v, wantErr %v", report.Err(), tt.wantErr)
			}
			if got.UIElements == nil || got.FileManager.SelectedChannelIDs == nil {
				t.Error("Loaded session must have non-nil collections")
			}
		})
	}
}

func TestLoadSessionMigratesV1(t *testing.T) {
	storage := NewMemoryStorage()
	_ = storage.Set(context.Background(), "session:test", `{
		"version": 1,
		"activeTab": "dda",
		"panelSizes": {"sidebar": 20, "main": 80},
		"fileManager": {"selectedFileId": "f1", "selectedChannels": ["Cz"]},
		"uiElements": [{"id": "w1", "type": "annotations", "position": {"x": 0, "y": 0}, "size": {"width": 300, "height": 200}}]
	}`)

	got, report := newService(storage, nil).LoadSession(context.Background())
	if !report.Migrated || report.FromVersion != 1 || report.Defaulted {
		t.Fatalf("Unexpected report %+v", report)
	}
	if !reflect.DeepEqual(got.FileManager.SelectedChannelIDs, []string{"Cz"}) {
		t.Errorf("SelectedChannelIDs = %v", got.FileManager.SelectedChannelIDs)
	}
	if !reflect.DeepEqual(got.PanelSizes, []float64{20, 80}) {
		t.Errorf("PanelSizes = %v", got.PanelSizes)
	}
	if len(got.UIElements) != 1 || got.UIElements[0].ID != "w1" {
		t.Errorf("UIElements = %+v", got.UIElements)
	}
	if got.Version != CurrentVersion {
		t.Errorf("Version = %d", got.Version)
	}
}

func TestLoadSessionDropsStaleReferences(t *testing.T) {
	ctx := context.Background()
	index := fakeIndex{files: map[string][]string{"f1": {"Fp1", "Cz"}}}

	tests := []struct {
		name         string
		fileID       string
		channels     []string
		wantFile     string
		wantChannels []string
		wantStale    int
	}{
		{"All Valid", "f1", []string{"Fp1", "Cz"}, "f1", []string{"Fp1", "Cz"}, 0},
		{"Missing Channel", "f1", []string{"Fp1", "O2"}, "f1", []string{"Fp1"}, 1},
		{"Missing File", "gone", []string{"Fp1"}, "", []string{}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := NewMemoryStorage()
			svc := newService(storage, index)
			svc.SaveSession(Patch{FileManager: &FileManagerState{SelectedFileID: tt.fileID, SelectedChannelIDs: tt.channels}})
			if err := svc.Flush(ctx); err != nil {
				t.Fatalf("Flush() error = %v", err)
			}

			got, report := newService(storage, index).LoadSession(ctx)
			if got.FileManager.SelectedFileID != tt.wantFile {
				t.Errorf("SelectedFileID = %q, want %q", got.FileManager.SelectedFileID, tt.wantFile)
			}
			if !reflect.DeepEqual(got.FileManager.SelectedChannelIDs, tt.wantChannels) {
				t.Errorf("SelectedChannelIDs = %v, want %v", got.FileManager.SelectedChannelIDs, tt.wantChannels)
			}
			if len(report.Stale) != tt.wantStale {
				t.Errorf("Stale = %+v, want %d entries", report.Stale, tt.wantStale)
			}
			if tt.wantStale > 0 && !errors.Is(report.Err(), ErrStaleReference) {
				t.Errorf("Expected ErrStaleReference in report, got %v", report.Err())
			}
			if errors.Is(report.Err(), ErrPersistenceRead) {
				t.Error("Stale references must not count as a read error")
			}
		})
	}
}

func TestLoadSessionIndexUnavailable(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	svc := newService(storage, nil)
	svc.SaveSession(Patch{FileManager: &FileManagerState{SelectedFileID: "f1", SelectedChannelIDs: []string{"Cz"}}})
	_ = svc.Flush(ctx)

	got, report := newService(storage, fakeIndex{err: errors.New("index down")}).LoadSession(ctx)
	if got.FileManager.SelectedFileID != "f1" || len(report.Stale) != 0 {
		t.Errorf("Unreachable index must keep references, got %+v / %+v", got.FileManager, report)
	}
}

func TestSaveSessionCoalesces(t *testing.T) {
	storage := &countingStorage{MemoryStorage: NewMemoryStorage()}
	saved := make(chan SessionState, 4)
	svc := NewSessionService(Options{
		Storage:  storage,
		Key:      "session:test",
		Debounce: 20 * time.Millisecond,
		OnSaved: func(s SessionState, err error) {
			if err == nil {
				saved <- s
			}
		},
		Logger: zap.NewNop(),
	})

	for i := range 10 {
		svc.SaveSession(Patch{PanelSizes: []float64{float64(i), float64(100 - i)}})
	}

	select {
	case s := <-saved:
		if !reflect.DeepEqual(s.PanelSizes, []float64{9, 91}) {
			t.Errorf("Saved PanelSizes = %v, want the last patch", s.PanelSizes)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Debounced save never ran")
	}
	if n := storage.count(); n != 1 {
		t.Errorf("Expected one write, got %d", n)
	}
}

func TestClearSessionCancelsPendingWrite(t *testing.T) {
	ctx := context.Background()
	storage := &countingStorage{MemoryStorage: NewMemoryStorage()}
	svc := newService(storage, nil)
	tab := "dda"

	svc.SaveSession(Patch{ActiveTab: &tab})
	if err := svc.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	svc.SaveSession(Patch{ActiveTab: &tab})

	if err := svc.ClearSession(ctx); err != nil {
		t.Fatalf("ClearSession() error = %v", err)
	}
	if err := svc.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if _, ok, _ := storage.Get(ctx, "session:test"); ok {
		t.Error("Record still stored after ClearSession")
	}
	if storage.count() != 1 {
		t.Errorf("Pending write must be cancelled, got %d writes", storage.count())
	}
	if svc.Current().ActiveTab != DefaultActiveTab {
		t.Errorf("Expected in-memory session reset, got %q", svc.Current().ActiveTab)
	}
}

func ptr(s string) *string { return &s }
