package widget

import "errors"

var (
	ErrNotFound          = errors.New("widget not found")
	ErrLayoutNotFound    = errors.New("layout not found")
	ErrUnknownWidgetType = errors.New("unknown widget type")
	ErrFlagConflict      = errors.New("widget cannot be maximized while popped out")
	ErrGestureBusy       = errors.New("another gesture is already active")
	ErrNoGesture         = errors.New("no active gesture")
	ErrCurrentLayout     = errors.New("cannot delete the current layout")
)

var ErrInvalidBounds = errors.New("minSize exceeds maxSize")
