package link

import "errors"

var (
	ErrNotConnected      = errors.New("link: not connected")
	ErrTimeout           = errors.New("link: connection timeout")
	ErrUnknownChannel    = errors.New("link: unknown telemetry channel")
	ErrConnectionRefused = errors.New("link: connection refused")
)
