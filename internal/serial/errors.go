package serial

import "errors"

var (
	ErrSerialization = errors.New("serialization failed")

	ErrIncomplete = errors.New("incomplete object")

	ErrBuilderFinished = errors.New("builder already finished")
)
