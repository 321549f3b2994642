package dashboard

import (
	"context"
	"errors"
	"sync"
)

var ErrWorkspaceClosed = errors.New("workspace is closed")

// Loop runs posted tasks one at a time, in arrival order, on a single
// goroutine. Everything that touches a workspace's store goes through it.
type Loop struct {
	tasks   chan func()
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func NewLoop(buffer int) *Loop {
	l := &Loop{
		tasks:   make(chan func(), buffer),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.stopped)
	for {
		select {
		case task := <-l.tasks:
			task()
		case <-l.done:
			return
		}
	}
}

// Post queues task. It reports false once the loop has stopped.
func (l *Loop) Post(task func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- task:
		return true
	case <-l.done:
		return false
	}
}

// Do runs fn on the loop and waits for its result. A cancelled ctx stops
// the wait, not fn.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	errc := make(chan error, 1)
	if !l.Post(func() { errc <- fn() }) {
		return ErrWorkspaceClosed
	}
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopped:
		select {
		case err := <-errc:
			return err
		default:
			return ErrWorkspaceClosed
		}
	}
}

// Stop ends the loop after the task in progress. Queued tasks are dropped.
func (l *Loop) Stop() {
	l.once.Do(func() { close(l.done) })
	<-l.stopped
}
