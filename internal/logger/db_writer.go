package logger

import (
	"context"
	"fmt"
	"sync"
	"time"

	common_models "eegdash/internal/common/models"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap/zapcore"
)

const (
	logBuffer     = 1000
	insertTimeout = 5 * time.Second
)

// LogEntry holds the data passed from Zap to our worker
type LogEntry struct {
	Level     zapcore.Level
	Message   string
	Caller    string
	UserID    string
	WidgetID  string
	SurfaceID string
	Error     string
}

// LogSink is the part of *mongo.Collection the writer needs
type LogSink interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

// DBLogWriter stores log entries from a background worker so logging never
// waits on the database
type DBLogWriter struct {
	sink    LogSink
	logChan chan LogEntry
	appId   string
	now     func() time.Time

	mu      sync.RWMutex
	closed  bool
	stopped chan struct{}
}

func NewDBLogWriter(sink LogSink, appId string) *DBLogWriter {
	writer := &DBLogWriter{
		sink:    sink,
		logChan: make(chan LogEntry, logBuffer),
		appId:   appId,
		now:     time.Now,
		stopped: make(chan struct{}),
	}

	go writer.processLogs()

	return writer
}

// AddLog queues entry. A full buffer drops it rather than block the caller.
func (w *DBLogWriter) AddLog(entry LogEntry) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}
	select {
	case w.logChan <- entry:
	default:
		fmt.Println("DB Log Channel Full! Dropping log:", entry.Message)
	}
}

// Close stops accepting entries and waits until the queued ones are stored
func (w *DBLogWriter) Close(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.logChan)
	}
	w.mu.Unlock()

	select {
	case <-w.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *DBLogWriter) processLogs() {
	defer close(w.stopped)
	for entry := range w.logChan {
		record := common_models.Log{
			AppID:        w.appId,
			Message:      entry.Message,
			LogLevelId:   mapLevelToInt(entry.Level),
			Caller:       entry.Caller,
			UserID:       entry.UserID,
			WidgetID:     entry.WidgetID,
			SurfaceID:    entry.SurfaceID,
			Error:        entry.Error,
			CreatedOnUtc: w.now().UTC(),
		}

		// a failed insert is dropped to keep the app running
		ctx, cancel := context.WithTimeout(context.Background(), insertTimeout)
		_, _ = w.sink.InsertOne(ctx, record)
		cancel()
	}
}

func mapLevelToInt(l zapcore.Level) int {
	switch l {
	case zapcore.DebugLevel:
		return 10
	case zapcore.InfoLevel:
		return 20
	case zapcore.WarnLevel:
		return 30
	case zapcore.ErrorLevel:
		return 40
	case zapcore.FatalLevel:
		return 50
	default:
		return 20
	}
}
