package coordinator

import "errors"

var (
	ErrInvalidSeekIndex = errors.New("invalid seek index")

	ErrClosed = errors.New("coordinator closed")

	ErrNoSnapshot = errors.New("no snapshot at or before index")

	ErrSnapshotIO = errors.New("snapshot io failure")
)
