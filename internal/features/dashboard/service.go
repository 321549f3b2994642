package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"eegdash/internal/config"
	"eegdash/internal/features/fileindex"
	"eegdash/internal/features/popout"
	"eegdash/internal/features/session"
	"eegdash/internal/features/widget"
	"eegdash/pkg/geometry"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type DashboardService interface {
	// Workspace returns the user's live workspace, restoring it from the
	// stored session on first use
	Workspace(ctx context.Context, userID string) (*Workspace, error)
	// RestoreReport returns what the last restore of the user's workspace found
	RestoreReport(userID string) (RestoreReport, bool)
	// ActiveUsers lists the users with a live workspace, sorted
	ActiveUsers() []string
	Evict(ctx context.Context, userID string) error
	SweepIdle(ctx context.Context) int
	InitializeScheduler(ctx context.Context) error
	StopScheduler() error
}

type DashboardServiceImpl struct {
	storage  session.StorageAdapter
	files    session.FileIndex
	windows  popout.Windowing
	registry *widget.Registry
	policy   widget.Policy
	canvas   geometry.Size
	debounce time.Duration
	idle     time.Duration
	schedule string
	log      *zap.Logger
	now      func() time.Time

	mu         sync.Mutex
	workspaces map[string]*Workspace
	reports    map[string]RestoreReport
	// opening serializes the first restore of each user
	opening map[string]chan struct{}

	scheduler *cron.Cron
}

func NewDashboardService(
	cfg *config.Config,
	storage session.StorageAdapter,
	files fileindex.FileIndexService,
	hub *popout.WebSocketHub,
	logger *zap.Logger,
) DashboardService {
	return newDashboardService(cfg, storage, files, hub, logger)
}

func newDashboardService(cfg *config.Config, storage session.StorageAdapter, files session.FileIndex, windows popout.Windowing, logger *zap.Logger) *DashboardServiceImpl {
	return &DashboardServiceImpl{
		storage:  storage,
		files:    files,
		windows:  windows,
		registry: widget.DefaultRegistry(),
		policy: widget.Policy{
			GridSize:                 cfg.GridSize,
			EnableSnapping:           cfg.EnableSnapping,
			EnableCollisionDetection: cfg.EnableCollisionDetection,
		},
		canvas:     geometry.Size{Width: cfg.CanvasWidth, Height: cfg.CanvasHeight},
		debounce:   cfg.SessionSaveDebounce,
		idle:       cfg.WorkspaceIdleTimeout,
		schedule:   cfg.WorkspaceSweepSchedule,
		log:        logger.Named("dashboard"),
		now:        time.Now,
		workspaces: make(map[string]*Workspace),
		reports:    make(map[string]RestoreReport),
		opening:    make(map[string]chan struct{}),
	}
}

func (s *DashboardServiceImpl) Workspace(ctx context.Context, userID string) (*Workspace, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}

	for {
		s.mu.Lock()
		if ws, ok := s.workspaces[userID]; ok {
			s.mu.Unlock()
			return ws, nil
		}
		wait, busy := s.opening[userID]
		if !busy {
			done := make(chan struct{})
			s.opening[userID] = done
			s.mu.Unlock()
			return s.open(ctx, userID, done)
		}
		s.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (s *DashboardServiceImpl) open(ctx context.Context, userID string, done chan struct{}) (*Workspace, error) {
	ws, report, err := NewWorkspace(ctx, WorkspaceOptions{
		UserID:   userID,
		Registry: s.registry,
		Policy:   s.policy,
		Canvas:   s.canvas,
		Storage:  s.storage,
		Files:    s.files,
		Windows:  s.windows,
		Debounce: s.debounce,
		Logger:   s.log,
	})

	s.mu.Lock()
	delete(s.opening, userID)
	if err == nil {
		s.workspaces[userID] = ws
		s.reports[userID] = report
	}
	s.mu.Unlock()
	close(done)

	if err != nil {
		return nil, fmt.Errorf("open workspace: %w", err)
	}
	s.log.Info("Workspace opened",
		zap.String("user_id", userID),
		zap.Bool("restored", report.Session.Found && !report.Session.Defaulted),
		zap.Int("dropped", len(report.Dropped)),
		zap.Int("minimized", len(report.Minimized)),
	)
	return ws, nil
}

func (s *DashboardServiceImpl) RestoreReport(userID string) (RestoreReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[userID]
	return r, ok
}

func (s *DashboardServiceImpl) ActiveUsers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]string, 0, len(s.workspaces))
	for id := range s.workspaces {
		users = append(users, id)
	}
	sort.Strings(users)
	return users
}

// Evict closes the user's workspace, writing its session first
func (s *DashboardServiceImpl) Evict(ctx context.Context, userID string) error {
	s.mu.Lock()
	ws, ok := s.workspaces[userID]
	delete(s.workspaces, userID)
	delete(s.reports, userID)
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return ws.Close(ctx)
}

// SweepIdle evicts workspaces unused for longer than the idle timeout and
// returns how many were closed
func (s *DashboardServiceImpl) SweepIdle(ctx context.Context) int {
	if s.idle <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.idle)

	s.mu.Lock()
	var idle []string
	for id, ws := range s.workspaces {
		if ws.LastUsed().Before(cutoff) {
			idle = append(idle, id)
		}
	}
	s.mu.Unlock()

	closed := 0
	for _, id := range idle {
		if err := s.Evict(ctx, id); err != nil {
			s.log.Warn("Failed to close idle workspace", zap.String("user_id", id), zap.Error(err))
			continue
		}
		closed++
	}
	if closed > 0 {
		s.log.Info("Closed idle workspaces", zap.Int("count", closed))
	}
	return closed
}

func (s *DashboardServiceImpl) InitializeScheduler(ctx context.Context) error {
	s.log.Info("Initializing workspace sweeper", zap.String("schedule", s.schedule))
	s.scheduler = cron.New()
	_, err := s.scheduler.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		s.SweepIdle(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule: %w", err)
	}
	s.scheduler.Start()
	return nil
}

// StopScheduler stops the sweeper and closes every open workspace
func (s *DashboardServiceImpl) StopScheduler() error {
	if s.scheduler != nil {
		ctx := s.scheduler.Stop()
		<-ctx.Done()
	}

	s.mu.Lock()
	ids := make([]string, 0, len(s.workspaces))
	for id := range s.workspaces {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	var errs []error
	for _, id := range ids {
		if err := s.Evict(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("user %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}
