package fileindex

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

var ErrInvalidRecording = errors.New("recording requires a path")

type FileIndexService interface {
	Exists(ctx context.Context, fileID string) (bool, error)
	Channels(ctx context.Context, fileID string) ([]string, error)
	List(ctx context.Context) ([]*Recording, error)
	Get(ctx context.Context, fileID string) (*Recording, error)
	Register(ctx context.Context, rec *Recording) error
	Remove(ctx context.Context, fileID string) error
}

type FileIndexServiceImpl struct {
	Repo   RecordingRepository
	Logger *zap.Logger
}

func NewFileIndexService(repo RecordingRepository, logger *zap.Logger) FileIndexService {
	return &FileIndexServiceImpl{
		Repo:   repo,
		Logger: logger,
	}
}

func (s *FileIndexServiceImpl) Exists(ctx context.Context, fileID string) (bool, error) {
	n, err := s.Repo.Count(ctx, fileID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *FileIndexServiceImpl) Channels(ctx context.Context, fileID string) ([]string, error) {
	rec, err := s.Repo.Get(ctx, fileID)
	if err != nil {
		return nil, err
	}
	return rec.Channels, nil
}

func (s *FileIndexServiceImpl) List(ctx context.Context) ([]*Recording, error) {
	return s.Repo.List(ctx)
}

func (s *FileIndexServiceImpl) Get(ctx context.Context, fileID string) (*Recording, error) {
	return s.Repo.Get(ctx, fileID)
}

func (s *FileIndexServiceImpl) Register(ctx context.Context, rec *Recording) error {
	rec.Path = strings.TrimSpace(rec.Path)
	if rec.Path == "" {
		return ErrInvalidRecording
	}
	if rec.Name == "" {
		rec.Name = filepath.Base(rec.Path)
	}
	if rec.Format == "" {
		rec.Format = strings.TrimPrefix(strings.ToLower(filepath.Ext(rec.Path)), ".")
	}
	rec.Channels = dedupeChannels(rec.Channels)
	if rec.UploadedAt.IsZero() {
		rec.UploadedAt = time.Now()
	}

	if err := s.Repo.Save(ctx, rec); err != nil {
		return err
	}
	s.Logger.Info("Registered recording", zap.String("file_id", rec.ID.Hex()), zap.String("path", rec.Path), zap.Int("channels", len(rec.Channels)))
	return nil
}

func (s *FileIndexServiceImpl) Remove(ctx context.Context, fileID string) error {
	if err := s.Repo.Delete(ctx, fileID); err != nil {
		return err
	}
	s.Logger.Info("Removed recording", zap.String("file_id", fileID))
	return nil
}

func dedupeChannels(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, ch := range in {
		ch = strings.TrimSpace(ch)
		if ch == "" {
			continue
		}
		if _, dup := seen[ch]; dup {
			continue
		}
		seen[ch] = struct{}{}
		out = append(out, ch)
	}
	return out
}
