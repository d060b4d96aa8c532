package tracing

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Station-Manager/logging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSinkConfig(target string, filter FilterFunc) SinkConfig {
	return SinkConfig{
		MinLevel:      zerolog.TraceLevel,
		Target:        target,
		Filter:        filter,
		FlushInterval: 10 * time.Millisecond,
		MaxSizeMB:     5,
		MaxBackups:    1,
		MaxAgeDays:    1,
	}
}

func TestDispatcher_InstallValidation(t *testing.T) {
	d := NewDispatcher()
	target := filepath.Join(t.TempDir(), "t.log")
	accept := func(Record) bool { return true }

	require.Error(t, d.Install("", testSinkConfig(target, accept)))
	require.Error(t, d.Install("s1", testSinkConfig("", accept)))
	require.Error(t, d.Install("s1", testSinkConfig(target, nil)))

	require.NoError(t, d.Install("s1", testSinkConfig(target, accept)))
	t.Cleanup(func() { _ = d.Close() })

	// Installing over a live sink id is refused; no silent replace.
	require.Error(t, d.Install("s1", testSinkConfig(target, accept)))
	assert.Len(t, d.SinkIDs(), 1)
}

func TestDispatcher_EmitWritesFilteredRecords(t *testing.T) {
	d := NewDispatcher()
	target := filepath.Join(t.TempDir(), "dev1.trace.log")
	require.NoError(t, d.Install("clientid_dev1", testSinkConfig(target, ClientIDSelector("dev1").Filter())))

	d.Emit(Record{Origin: OriginClient, ClientID: "dev1", Topic: "a/b", Payload: []byte("hello")})
	d.Emit(Record{Origin: OriginClient, ClientID: "dev2", Topic: "a/b", Payload: []byte("other")})

	// Remove flushes the buffer before closing the file.
	require.NoError(t, d.Remove("clientid_dev1"))

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, `"client_id":"dev1"`)
	assert.Contains(t, text, `"topic":"a/b"`)
	assert.Contains(t, text, "hello")
	assert.Contains(t, text, "PUBLISH")
	assert.NotContains(t, text, "dev2")
}

func TestDispatcher_FlushCadence(t *testing.T) {
	d := NewDispatcher()
	t.Cleanup(func() { _ = d.Close() })
	target := filepath.Join(t.TempDir(), "cadence.log")
	require.NoError(t, d.Install("topic_a%2F%23", testSinkConfig(target, TopicSelector("a/#").Filter())))

	d.Emit(Record{Origin: OriginSystem, Topic: "a/b", Payload: []byte("tick")})

	// The periodic flush, not Remove, makes the record visible.
	require.Eventually(t, func() bool {
		content, err := os.ReadFile(target)
		return err == nil && len(content) > 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDispatcher_RemoveUnknown(t *testing.T) {
	d := NewDispatcher()
	require.Error(t, d.Remove("topic_nope"))
}

func TestDispatcher_SinkMinLevelGate(t *testing.T) {
	d := NewDispatcher()
	target := filepath.Join(t.TempDir(), "gated.log")
	cfg := testSinkConfig(target, func(Record) bool { return true })
	cfg.MinLevel = zerolog.InfoLevel
	require.NoError(t, d.Install("s1", cfg))

	d.Emit(Record{Origin: OriginSystem, Topic: "a/b"})
	require.NoError(t, d.Remove("s1"))

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Empty(t, content)
}

func TestDispatcher_Close(t *testing.T) {
	d := NewDispatcher()
	dir := t.TempDir()
	accept := func(Record) bool { return true }
	require.NoError(t, d.Install("s1", testSinkConfig(filepath.Join(dir, "1.log"), accept)))
	require.NoError(t, d.Install("s2", testSinkConfig(filepath.Join(dir, "2.log"), accept)))

	require.NoError(t, d.Close())
	assert.Empty(t, d.SinkIDs())
}

func TestServiceWithDispatcherEndToEnd(t *testing.T) {
	s := &Service{
		WorkingDir: t.TempDir(),
		Log:        logging.NewLogger(),
		Config:     validTraceConfig(),
	}
	require.NoError(t, s.Initialize())
	t.Cleanup(func() { _ = s.Close() })

	sel := TopicSelector("sensor/+/temp")
	require.NoError(t, s.StartTrace(sel, "sensor.trace.log"))

	s.TracePublish(Event{Origin: OriginClient, ClientID: "dev1", Topic: "sensor/room1/temp", Payload: []byte("21.5")})
	s.TracePublish(Event{Origin: OriginClient, ClientID: "dev1", Topic: "door/front", Payload: []byte("open")})

	require.NoError(t, s.StopTrace(sel))

	target := filepath.Join(s.WorkingDir, s.Config.RelTraceFileDir, "sensor.trace.log")
	content, err := os.ReadFile(target)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "sensor/room1/temp")
	assert.Contains(t, text, "21.5")
	assert.NotContains(t, text, "door/front")
}
