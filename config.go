package tracing

// Config controls the tracing service: the baseline verbosity to restore when
// no session is active, where relative trace destinations land, and the
// rotation and flush behaviour shared by every installed sink.
type Config struct {
	// Level is the operator-configured baseline verbosity. It is captured once
	// at Initialize and restored exactly when the last trace session stops.
	Level string `validate:"required"`
	// RelTraceFileDir is joined with the working directory to resolve relative
	// trace destinations.
	RelTraceFileDir string `validate:"required"`
	// FlushIntervalMS is the periodic sink flush cadence in milliseconds.
	// Zero selects the default cadence.
	FlushIntervalMS     int `validate:"gte=0"`
	TraceFileMaxSizeMB  int `validate:"gte=0"`
	TraceFileMaxBackups int `validate:"gte=0"`
	TraceFileMaxAgeDays int `validate:"gte=0"`
}
