package tracing

import (
	"time"

	"github.com/rs/zerolog"
)

// defaultFlushInterval is the sink flush cadence when the config leaves it unset.
const defaultFlushInterval = 1000 * time.Millisecond

// SinkConfig is everything the registry supplies when installing a sink: the
// severity gate below which the sink drops records, the output target, the
// per-session filter bound to the session's selector, and the file rotation
// and flush knobs.
type SinkConfig struct {
	MinLevel zerolog.Level
	// Target is the file path the sink writes to.
	Target string
	// Filter is consulted per record; a sink without a filter cannot be
	// installed (default-reject, never default-accept).
	Filter FilterFunc
	// FlushInterval is the periodic sync cadence; zero selects the default.
	FlushInterval time.Duration
	MaxSizeMB     int
	MaxBackups    int
	MaxAgeDays    int
}

// SinkInstaller is the registry's view of the logging subsystem: install a
// named sink configured for one trace session, or tear one down. Dispatcher
// is the zerolog implementation; tests substitute fakes.
type SinkInstaller interface {
	Install(sinkID string, cfg SinkConfig) error
	Remove(sinkID string) error
}

// Emitter receives classified records on the publish hot path and fans them
// out to whatever sinks accept them.
type Emitter interface {
	Emit(rec Record)
}
