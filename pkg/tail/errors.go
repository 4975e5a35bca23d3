package tail

import "errors"

var (
	// ErrIO reports a failed seek, read or write, including a read that
	// returned fewer bytes than requested.
	ErrIO = errors.New("tail: i/o error")
	// ErrOutOfMemory reports that loading the next block would exceed the
	// memory limit set with WithMemoryLimit.
	ErrOutOfMemory = errors.New("tail: out of memory")
	// ErrInvalidArgument reports a non-positive line count or tuning value.
	ErrInvalidArgument = errors.New("tail: invalid argument")
)
