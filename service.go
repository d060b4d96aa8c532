package tracing

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/Station-Manager/logging"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

// Registry API errors; callers distinguish them with errors.Is.
var (
	// ErrAlreadyActive is returned by StartTrace when the selector already has
	// a live session. The existing session, destination included, is untouched.
	ErrAlreadyActive = errors.New("trace session already active")
	// ErrNotFound is returned by StopTrace for a selector with no live session.
	ErrNotFound = errors.New("trace session not found")
	// ErrInstallFailed wraps a sink installer rejection. No session state was
	// changed and the verbosity gate was not widened.
	ErrInstallFailed = errors.New("trace sink install failed")
)

// TraceSession is one live capture: the selector it matches, the sink
// installed for it, and where that sink writes.
type TraceSession struct {
	Selector    Selector
	SinkID      string
	Destination string
}

// TraceEntry is one row of a ListTraces snapshot.
type TraceEntry struct {
	Selector    Selector
	Destination string
}

// Service is the trace session registry. It owns the map of live sessions,
// remembers the operator's original verbosity and widens/restores the
// effective verbosity as sessions come and go. Every mutation, the installer
// call included, runs under one mutex; the publish hot path never takes it.
type Service struct {
	WorkingDir string         `di.inject:"WorkingDir"`
	Log        logging.Logger `di.inject:"logging"`
	Config     *Config

	// Installer receives sink install/remove calls. Left nil, Initialize wires
	// an in-process zerolog Dispatcher, which then also serves as the emitter.
	Installer SinkInstaller

	mu       sync.Mutex
	sessions map[Selector]*TraceSession
	emitter  Emitter

	// originalLevel is captured once at Initialize and never re-derived.
	originalLevel  zerolog.Level
	effectiveLevel atomic.Int32
	initialized    atomic.Bool
}

func NewService() *Service {
	return &Service{}
}

// Initialize validates the configuration, captures the operator's baseline
// verbosity as the level to restore once tracing stops, and wires the sink
// installer. Initializing an already-live service is rejected: the baseline
// is captured exactly once.
func (s *Service) Initialize() error {
	if s == nil {
		return errors.New(errMsgNilService)
	}
	if s.initialized.Load() {
		return errors.New("tracing service is already initialized")
	}
	if s.WorkingDir == emptyString {
		return errors.New("working dir has not been set/injected")
	}
	if s.Log == nil {
		return errors.New(errMsgLoggerNotSet)
	}
	if err := validateConfig(s.Config); err != nil {
		return err
	}

	level, err := parseLevel(s.Config.Level)
	if err != nil {
		return fmt.Errorf("parsing baseline level: %w", err)
	}
	s.originalLevel = level
	s.effectiveLevel.Store(int32(level))

	if s.Installer == nil {
		d := NewDispatcher()
		s.Installer = d
		s.emitter = d
	} else if e, ok := s.Installer.(Emitter); ok {
		s.emitter = e
	}

	s.sessions = make(map[Selector]*TraceSession)
	s.initialized.Store(true)
	return nil
}

// StartTrace installs a filtered sink for selector writing to destination and
// widens the effective verbosity so trace records survive the global gate.
// A relative destination is resolved under the configured trace directory.
// Starting a selector that already has a session returns ErrAlreadyActive
// without touching the existing sink or its destination.
func (s *Service) StartTrace(sel Selector, destination string) error {
	if s == nil || !s.initialized.Load() {
		return errors.New(errMsgNotInitialized)
	}
	if err := sel.validate(); err != nil {
		return err
	}
	if destination == emptyString {
		return errors.New("trace destination is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sel]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyActive, sel)
	}

	sinkID := sel.SinkID()
	cfg := SinkConfig{
		MinLevel:      zerolog.TraceLevel,
		Target:        s.resolveDestination(destination),
		Filter:        sel.Filter(),
		FlushInterval: s.flushInterval(),
		MaxSizeMB:     s.Config.TraceFileMaxSizeMB,
		MaxBackups:    s.Config.TraceFileMaxBackups,
		MaxAgeDays:    s.Config.TraceFileMaxAgeDays,
	}

	if err := s.Installer.Install(sinkID, cfg); err != nil {
		return fmt.Errorf("%w: %s: %s", ErrInstallFailed, sinkID, err)
	}

	s.sessions[sel] = &TraceSession{Selector: sel, SinkID: sinkID, Destination: destination}
	// The sink's own filter is the selectivity mechanism; the global gate just
	// has to stop dropping trace-severity records while any session is live.
	s.effectiveLevel.Store(int32(zerolog.TraceLevel))

	s.Log.InfoWith().
		Str("selector", sel.String()).
		Str("sink_id", sinkID).
		Str("destination", destination).
		Msg("Trace session started.")
	return nil
}

// StopTrace removes the selector's session. A sink removal failure is logged
// as an operational error but does not keep the session alive: the operator's
// intent is to stop tracing, and a dangling sink is the failure mode to
// surface, not to block on. The original verbosity is restored exactly when
// the last session is gone.
func (s *Service) StopTrace(sel Selector) error {
	if s == nil || !s.initialized.Load() {
		return errors.New(errMsgNotInitialized)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sel]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, sel)
	}

	if err := s.Installer.Remove(sess.SinkID); err != nil {
		s.Log.ErrorWith().
			Err(err).
			Str("selector", sel.String()).
			Str("sink_id", sess.SinkID).
			Msg("Trace sink removal failed; session removed anyway.")
	} else {
		s.Log.InfoWith().
			Str("selector", sel.String()).
			Str("sink_id", sess.SinkID).
			Msg("Trace session stopped.")
	}

	delete(s.sessions, sel)
	if len(s.sessions) == 0 {
		s.effectiveLevel.Store(int32(s.originalLevel))
	}
	return nil
}

// ListTraces returns a consistent snapshot of the live sessions, ordered by
// sink id. Safe to call concurrently with StartTrace/StopTrace.
func (s *Service) ListTraces() []TraceEntry {
	if s == nil || !s.initialized.Load() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]TraceEntry, 0, len(s.sessions))
	for _, sess := range s.sessions {
		entries = append(entries, TraceEntry{Selector: sess.Selector, Destination: sess.Destination})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Selector.SinkID() < entries[j].Selector.SinkID()
	})
	return entries
}

// EffectiveLevel returns the verbosity gate currently applied ahead of every
// per-sink filter.
func (s *Service) EffectiveLevel() zerolog.Level {
	if s == nil {
		return zerolog.NoLevel
	}
	return zerolog.Level(s.effectiveLevel.Load())
}

// TracePublish is the hot-path entry the message pipeline calls per candidate
// publish. Ineligible events, and all events while the gate is stricter than
// trace severity (i.e. no session is widening it), are dropped before any
// sink work happens. It takes no registry lock.
func (s *Service) TracePublish(ev Event) {
	if s == nil || !s.initialized.Load() || s.emitter == nil {
		return
	}
	if zerolog.Level(s.effectiveLevel.Load()) > zerolog.TraceLevel {
		return
	}
	rec, ok := Classify(ev)
	if !ok {
		return
	}
	s.emitter.Emit(rec)
}

// Close stops every live session best-effort and restores the original
// verbosity. Removal failures are logged and never block teardown. Safe to
// call more than once.
func (s *Service) Close() error {
	if s == nil || !s.initialized.Load() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for sel, sess := range s.sessions {
		if err := s.Installer.Remove(sess.SinkID); err != nil {
			s.Log.ErrorWith().
				Err(err).
				Str("selector", sel.String()).
				Str("sink_id", sess.SinkID).
				Msg("Trace sink removal failed during shutdown.")
		}
		delete(s.sessions, sel)
	}
	s.effectiveLevel.Store(int32(s.originalLevel))
	s.initialized.Store(false)
	return nil
}

func (s *Service) resolveDestination(destination string) string {
	if filepath.IsAbs(destination) {
		return destination
	}
	return filepath.Join(s.WorkingDir, s.Config.RelTraceFileDir, destination)
}

func (s *Service) flushInterval() time.Duration {
	if s.Config.FlushIntervalMS <= 0 {
		return defaultFlushInterval
	}
	return time.Duration(s.Config.FlushIntervalMS) * time.Millisecond
}
