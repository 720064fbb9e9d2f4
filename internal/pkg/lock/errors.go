package lock

import "errors"

// ErrLockTimeout is returned when a key cannot be acquired before the
// deadline, usually because another transition for the same session is still
// running.
var ErrLockTimeout = errors.New("lock acquisition timeout")
