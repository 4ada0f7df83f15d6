package state

import "errors"

// ErrStale is returned when a channel has not been updated within the stale threshold.
var ErrStale = errors.New("state: telemetry is stale")
