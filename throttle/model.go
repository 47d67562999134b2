package throttle

import (
	"errors"
	"time"
)

var (
	ErrNegativeWait  = errors.New("wait must not be negative")
	ErrNilFunc       = errors.New("callback must not be nil")
	ErrInvalidConfig = errors.New("invalid throttle config")
)

// Config describes a throttler in plain values, for callers that load
// settings from their own configuration source.
// A nil Leading means true; a zero DropLogInterval keeps the default.
type Config struct {
	Wait            time.Duration `json:"wait" validate:"gte=0s"`
	Leading         *bool         `json:"leading"`
	LatestArgs      bool          `json:"latest_args"`
	DropLogInterval time.Duration `json:"drop_log_interval" validate:"gte=0s"`
}

// Stats is a point-in-time snapshot of a [Throttler]'s counters.
type Stats struct {
	Calls      uint64 // every Call/CallContext
	Leading    uint64 // fires on the caller's goroutine
	Trailing   uint64 // fires from the pending timer
	Suppressed uint64 // calls that neither fired nor scheduled a timer
	Cancelled  uint64 // pending timers stopped before they fired
	Panics     uint64 // recovered trailing-fire panics

	// CallRate is the number of calls observed during the last second
	// of wall-clock time, independent of the configured Clock.
	CallRate int64
}

type edge string

const (
	edgeLeading  edge = "leading"
	edgeTrailing edge = "trailing"
)
