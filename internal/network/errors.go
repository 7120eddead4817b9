package network

import "errors"

var (
	ErrUnknownMessageType = errors.New("unknown message type")

	ErrReceiverFailed = errors.New("receiver failed previously")
)
