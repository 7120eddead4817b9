package storage

import "errors"

var (
	ErrOutOfRange = errors.New("read out of range")

	ErrStorageIO = errors.New("update log i/o failure")

	ErrClosed = errors.New("update log closed")
)
