package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// FileIndex answers whether a recording still exists
type FileIndex interface {
	Exists(ctx context.Context, fileID string) (bool, error)
}

// ChannelLister is implemented by file indexes that also know a
// recording's channels
type ChannelLister interface {
	Channels(ctx context.Context, fileID string) ([]string, error)
}

type SessionService interface {
	// SaveSession merges patch into the session and schedules a write
	SaveSession(patch Patch) SessionState
	// Flush writes any pending change now
	Flush(ctx context.Context) error
	LoadSession(ctx context.Context) (SessionState, Report)
	ClearSession(ctx context.Context) error
	Current() SessionState
}

type Options struct {
	Storage  StorageAdapter
	Key      string
	Files    FileIndex
	Debounce time.Duration
	// OnSaved is called after every background write attempt
	OnSaved func(SessionState, error)
	Logger  *zap.Logger
}

type SessionServiceImpl struct {
	storage StorageAdapter
	key     string
	files   FileIndex
	onSaved func(SessionState, error)
	log     *zap.Logger
	now     func() time.Time

	debouncer *Debouncer

	mu      sync.Mutex
	current SessionState
	// writeMu keeps a flush and a timer write from interleaving
	writeMu sync.Mutex
}

const writeTimeout = 10 * time.Second

func NewSessionService(opts Options) *SessionServiceImpl {
	s := &SessionServiceImpl{
		storage:   opts.Storage,
		key:       opts.Key,
		files:     opts.Files,
		onSaved:   opts.OnSaved,
		log:       opts.Logger,
		now:       time.Now,
		debouncer: NewDebouncer(opts.Debounce),
		current:   DefaultSession(),
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

func (s *SessionServiceImpl) Current() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

func (s *SessionServiceImpl) SaveSession(patch Patch) SessionState {
	s.mu.Lock()
	s.current = s.current.apply(patch)
	out := s.current.Clone()
	s.mu.Unlock()

	s.debouncer.Schedule(func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		state, err := s.write(ctx)
		if s.onSaved != nil {
			s.onSaved(state, err)
		}
	})
	return out
}

func (s *SessionServiceImpl) write(ctx context.Context) (SessionState, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.current.Version = CurrentVersion
	s.current.SavedAt = s.now().UTC()
	state := s.current.Clone()
	s.mu.Unlock()

	raw, err := json.Marshal(state)
	if err != nil {
		s.log.Error("Failed to encode session", zap.String("key", s.key), zap.Error(err))
		return state, fmt.Errorf("encode session: %w", err)
	}
	if err := s.storage.Set(ctx, s.key, string(raw)); err != nil {
		s.log.Error("Failed to write session", zap.String("key", s.key), zap.Error(err))
		return state, fmt.Errorf("write session: %w", err)
	}
	s.log.Debug("Session saved", zap.String("key", s.key), zap.Int("widgets", len(state.UIElements)))
	return state, nil
}

func (s *SessionServiceImpl) Flush(ctx context.Context) error {
	if !s.debouncer.Cancel() {
		return nil
	}
	_, err := s.write(ctx)
	return err
}

func (s *SessionServiceImpl) ClearSession(ctx context.Context) error {
	s.debouncer.Cancel()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.storage.Remove(ctx, s.key); err != nil {
		return fmt.Errorf("remove session: %w", err)
	}

	s.mu.Lock()
	s.current = DefaultSession()
	s.mu.Unlock()
	s.log.Info("Session cleared", zap.String("key", s.key))
	return nil
}

// LoadSession reads the stored record. It never fails: unreadable records
// and records from unknown versions give the default session, and the
// report says why.
func (s *SessionServiceImpl) LoadSession(ctx context.Context) (SessionState, Report) {
	state, report := s.read(ctx)
	if !report.Defaulted {
		report.Stale = s.validate(ctx, &state)
		for _, ref := range report.Stale {
			s.log.Warn("Dropped stale session reference", zap.String("key", s.key), zap.String("kind", ref.Kind), zap.String("id", ref.ID))
		}
	}

	s.mu.Lock()
	s.current = state
	s.mu.Unlock()
	return state.Clone(), report
}

func (s *SessionServiceImpl) read(ctx context.Context) (SessionState, Report) {
	fallback := func(err error) (SessionState, Report) {
		s.log.Warn("Using default session", zap.String("key", s.key), zap.Error(err))
		wrapped := fmt.Errorf("%w: %v", ErrPersistenceRead, err)
		return DefaultSession(), Report{Found: true, Defaulted: true, ReadError: wrapped.Error(), err: wrapped}
	}

	raw, ok, err := s.storage.Get(ctx, s.key)
	if err != nil {
		r := Report{Defaulted: true, ReadError: err.Error(), err: fmt.Errorf("%w: %v", ErrPersistenceRead, err)}
		s.log.Warn("Failed to read session", zap.String("key", s.key), zap.Error(err))
		return DefaultSession(), r
	}
	if !ok {
		return DefaultSession(), Report{Defaulted: true}
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return fallback(err)
	}
	if doc == nil {
		return fallback(errors.New("record is not an object"))
	}

	from, err := migrate(doc)
	if err != nil {
		return fallback(err)
	}

	upgraded, err := json.Marshal(doc)
	if err != nil {
		return fallback(err)
	}
	state := DefaultSession()
	if err := json.Unmarshal(upgraded, &state); err != nil {
		return fallback(err)
	}
	state.Version = CurrentVersion
	state.normalize()

	report := Report{Found: true}
	if from != CurrentVersion {
		report.Migrated = true
		report.FromVersion = from
		s.log.Info("Migrated session", zap.String("key", s.key), zap.Int("from", from), zap.Int("to", CurrentVersion))
	}
	return state, report
}

// validate drops file and channel ids the file index no longer knows. An
// index that cannot be reached leaves the references alone.
func (s *SessionServiceImpl) validate(ctx context.Context, state *SessionState) []StaleReference {
	if s.files == nil {
		return nil
	}
	fm := &state.FileManager
	if fm.SelectedFileID == "" {
		return nil
	}

	var stale []StaleReference
	exists, err := s.files.Exists(ctx, fm.SelectedFileID)
	if err != nil {
		s.log.Warn("Could not validate session file", zap.String("file_id", fm.SelectedFileID), zap.Error(err))
		return nil
	}
	if !exists {
		stale = append(stale, StaleReference{Kind: "file", ID: fm.SelectedFileID})
		for _, ch := range fm.SelectedChannelIDs {
			stale = append(stale, StaleReference{Kind: "channel", ID: ch})
		}
		fm.SelectedFileID = ""
		fm.SelectedChannelIDs = []string{}
		return stale
	}

	lister, ok := s.files.(ChannelLister)
	if !ok {
		return nil
	}
	channels, err := lister.Channels(ctx, fm.SelectedFileID)
	if err != nil {
		s.log.Warn("Could not validate session channels", zap.String("file_id", fm.SelectedFileID), zap.Error(err))
		return nil
	}
	known := make(map[string]struct{}, len(channels))
	for _, ch := range channels {
		known[ch] = struct{}{}
	}
	kept := make([]string, 0, len(fm.SelectedChannelIDs))
	for _, ch := range fm.SelectedChannelIDs {
		if _, ok := known[ch]; ok {
			kept = append(kept, ch)
			continue
		}
		stale = append(stale, StaleReference{Kind: "channel", ID: ch})
	}
	fm.SelectedChannelIDs = kept
	return stale
}
