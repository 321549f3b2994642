package gesture

import "errors"

var (
	ErrNotInteractive = errors.New("widget is minimized or popped out")
	ErrInvalidHandle  = errors.New("invalid resize handle")
)
