package popout

import "errors"

var (
	ErrAlreadyPopped  = errors.New("widget is already popped out")
	ErrNotPopped      = errors.New("widget is not popped out")
	ErrUnknownSurface = errors.New("unknown popout surface")
	ErrSurfaceBusy    = errors.New("popout surface already connected")
	// ErrSurfaceForbidden rejects a connection from a user other than the
	// one who popped the widget out
	ErrSurfaceForbidden = errors.New("popout surface belongs to another user")
	ErrQueueFull        = errors.New("popout surface queue is full")
)
