package tracing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Run("named client publish is eligible", func(t *testing.T) {
		rec, ok := Classify(Event{
			Origin:   OriginClient,
			ClientID: "dev1",
			Peer:     "10.0.0.7:51123",
			Topic:    "a/b",
			Payload:  []byte("hello"),
		})
		require.True(t, ok)
		assert.Equal(t, "dev1", rec.ClientID)
		assert.Equal(t, "a/b", rec.Topic)
		assert.Equal(t, "10.0.0.7:51123", rec.Peer)
		assert.Equal(t, []byte("hello"), rec.Payload)
		assert.Equal(t, OriginClient, rec.Origin)
	})

	t.Run("system actor publish is eligible", func(t *testing.T) {
		_, ok := Classify(Event{Origin: OriginSystem, Topic: "status/uplink"})
		assert.True(t, ok)
	})

	t.Run("system topics are never eligible", func(t *testing.T) {
		_, ok := Classify(Event{Origin: OriginClient, ClientID: "dev1", Topic: "$SYS/broker/load"})
		assert.False(t, ok)

		_, ok = Classify(Event{Origin: OriginSystem, Topic: "$SYS"})
		assert.False(t, ok)
	})

	t.Run("anonymous origin is ignored", func(t *testing.T) {
		_, ok := Classify(Event{Origin: OriginUnknown, Topic: "a/b"})
		assert.False(t, ok)
	})

	t.Run("client origin without client id is ignored", func(t *testing.T) {
		_, ok := Classify(Event{Origin: OriginClient, Topic: "a/b"})
		assert.False(t, ok)
	})
}
