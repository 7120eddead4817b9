package ingest

import "errors"

var (
	ErrInstanceMismatch = errors.New("instance hash mismatch")

	ErrNoOffer = errors.New("clause update before offer")
)
