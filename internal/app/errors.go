package app

import "errors"

// ErrNoSavedLayout and related errors classify layout-record load failures.
// The engine treats all of them as "use the default layout"; they exist so
// callers can tell an empty first run from a discarded stale save.
var (
	ErrNoSavedLayout = errors.New("no saved layout")
	ErrStaleLayout   = errors.New("stale layout version")
	ErrCorruptLayout = errors.New("corrupt layout record")
)
