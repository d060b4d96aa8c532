package tracing

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Dispatcher is the zerolog-backed SinkInstaller. Every sink is a lumberjack
// rotating file behind a buffered writer with a periodic flush, plus its own
// zerolog logger. Emit reads an immutable snapshot of the sink list, so the
// hot path never contends with Install/Remove.
type Dispatcher struct {
	mu       sync.Mutex
	sinks    map[string]*sink
	snapshot atomic.Pointer[[]*sink]
}

type sink struct {
	id     string
	cfg    SinkConfig
	file   *lumberjack.Logger
	writer *flushWriter
	logger zerolog.Logger
	done   chan struct{}
}

// flushWriter serializes writes to the buffered rotating file so the emit
// path and the flush ticker can share it.
type flushWriter struct {
	mu  sync.Mutex
	buf *bufio.Writer
}

func (w *flushWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

func (w *flushWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Flush()
}

func NewDispatcher() *Dispatcher {
	d := &Dispatcher{sinks: make(map[string]*sink)}
	empty := make([]*sink, 0)
	d.snapshot.Store(&empty)
	return d
}

// Install opens the sink's target file and starts its flush ticker.
// Installing over a live sink id is an error: replace semantics, if wanted,
// are the caller's to spell out with an explicit Remove first.
func (d *Dispatcher) Install(sinkID string, cfg SinkConfig) error {
	if sinkID == emptyString {
		return fmt.Errorf("install sink: empty sink id")
	}
	if cfg.Target == emptyString {
		return fmt.Errorf("install sink %q: empty target", sinkID)
	}
	if cfg.Filter == nil {
		return fmt.Errorf("install sink %q: nil filter", sinkID)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.sinks[sinkID]; ok {
		return fmt.Errorf("install sink %q: already installed", sinkID)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Target), os.ModePerm); err != nil {
		return fmt.Errorf("install sink %q: %w", sinkID, err)
	}
	// Probe the target up front so a bad path fails the install, not the
	// first write.
	f, err := os.OpenFile(cfg.Target, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("install sink %q: %w", sinkID, err)
	}
	_ = f.Close()

	file := &lumberjack.Logger{
		Filename:   cfg.Target,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}
	writer := &flushWriter{buf: bufio.NewWriter(file)}
	logger := zerolog.New(writer).Level(cfg.MinLevel).With().Timestamp().Logger()

	s := &sink{
		id:     sinkID,
		cfg:    cfg,
		file:   file,
		writer: writer,
		logger: logger,
		done:   make(chan struct{}),
	}
	d.sinks[sinkID] = s
	d.publishLocked()

	interval := cfg.FlushInterval
	if interval <= 0 {
		interval = defaultFlushInterval
	}
	go s.flushLoop(interval)

	return nil
}

func (s *sink) flushLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = s.writer.Flush()
		case <-s.done:
			return
		}
	}
}

// Remove stops the sink's flush loop, flushes what is buffered and closes the
// file. Removing an unknown id is an error the caller may treat as non-fatal.
func (d *Dispatcher) Remove(sinkID string) error {
	d.mu.Lock()
	s, ok := d.sinks[sinkID]
	if !ok {
		d.mu.Unlock()
		return fmt.Errorf("remove sink %q: not installed", sinkID)
	}
	delete(d.sinks, sinkID)
	d.publishLocked()
	d.mu.Unlock()

	close(s.done)
	flushErr := s.writer.Flush()
	closeErr := s.file.Close()
	if flushErr != nil {
		return fmt.Errorf("remove sink %q: %w", sinkID, flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("remove sink %q: %w", sinkID, closeErr)
	}
	return nil
}

// Emit fans a classified record out to every sink whose severity gate and
// filter accept it. It runs against the current snapshot and takes no lock
// shared with Install/Remove.
func (d *Dispatcher) Emit(rec Record) {
	sinks := *d.snapshot.Load()
	for _, s := range sinks {
		if s.cfg.MinLevel > zerolog.TraceLevel {
			continue
		}
		if !s.cfg.Filter(rec) {
			continue
		}
		evt := s.logger.Trace().
			Str("topic", rec.Topic).
			Str("origin", rec.Origin.String())
		if rec.ClientID != emptyString {
			evt = evt.Str("client_id", rec.ClientID)
		}
		if rec.Peer != emptyString {
			evt = evt.Str("peer", rec.Peer)
		}
		evt.Bytes("payload", rec.Payload).Msg("PUBLISH")
	}
}

// SinkIDs returns the ids of the currently installed sinks, unordered.
func (d *Dispatcher) SinkIDs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	ids := make([]string, 0, len(d.sinks))
	for id := range d.sinks {
		ids = append(ids, id)
	}
	return ids
}

// Close removes every installed sink, returning the first failure.
func (d *Dispatcher) Close() error {
	var firstErr error
	for _, id := range d.SinkIDs() {
		if err := d.Remove(id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// publishLocked refreshes the hot-path snapshot; d.mu must be held.
func (d *Dispatcher) publishLocked() {
	snap := make([]*sink, 0, len(d.sinks))
	for _, s := range d.sinks {
		snap = append(snap, s)
	}
	d.snapshot.Store(&snap)
}
