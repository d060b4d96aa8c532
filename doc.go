// Package tracing provides runtime-controllable selective tracing for the
// station message broker: operators start and stop capture of a filtered
// subset of publish traffic (one client id, or one topic pattern) into a
// dedicated rotating log file, without restarting the process or disturbing
// logging of unrelated traffic.
//
// Key features
//   - Trace sessions keyed by selector: client id or topic wildcard pattern
//   - Per-sink filters bound once at install time; default-reject semantics
//   - The global verbosity gate is widened while any session is active and
//     restored to the operator's original level when the last session stops
//   - Hierarchical topic matching: '+' one level, '#' trailing multi-level
//   - System topics ($SYS) are never traceable
//   - Sinks are rotating files (lumberjack) flushed on a periodic cadence
//
// Typical usage
//
//	svc := &tracing.Service{WorkingDir: wd, Log: log, Config: cfg}
//	if err := svc.Initialize(); err != nil { panic(err) }
//	defer svc.Close()
//
//	_ = svc.StartTrace(tracing.ClientIDSelector("dev1"), "dev1.trace.log")
//	svc.TracePublish(ev) // called by the message pipeline per publish
package tracing
