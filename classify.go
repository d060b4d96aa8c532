package tracing

import "strings"

// Origin classifies where a publish came from.
type Origin int8

const (
	// OriginUnknown is an absent or anonymous origin; never trace-eligible.
	OriginUnknown Origin = iota
	// OriginClient is a named client session.
	OriginClient
	// OriginSystem is an internal actor publishing on behalf of the broker.
	OriginSystem
)

func (o Origin) String() string {
	switch o {
	case OriginClient:
		return "client"
	case OriginSystem:
		return "system"
	default:
		return "unknown"
	}
}

// Event is a candidate publish as seen by the message pipeline.
type Event struct {
	Origin   Origin
	ClientID string
	// Peer is the remote address when the origin has a connection.
	Peer    string
	Topic   string
	Payload []byte
}

// Record is the loggable form of a trace-eligible event. It carries the
// metadata installed sink filters key on (client id, topic) plus the payload
// as an opaque displayable value.
type Record struct {
	Origin   Origin
	ClientID string
	Peer     string
	Topic    string
	Payload  []byte
}

// Classify decides whether an event is trace-eligible and shapes its loggable
// record. Traffic on system topics is never eligible, whatever sessions
// exist; neither are publishes from unknown or anonymous origins, nor a
// client origin without a client id. Eligibility is orthogonal to session
// filtering, which happens per installed sink.
func Classify(ev Event) (Record, bool) {
	if strings.HasPrefix(ev.Topic, sysTopicPrefix) {
		return Record{}, false
	}

	switch ev.Origin {
	case OriginClient:
		if ev.ClientID == emptyString {
			return Record{}, false
		}
	case OriginSystem:
	default:
		return Record{}, false
	}

	return Record{
		Origin:   ev.Origin,
		ClientID: ev.ClientID,
		Peer:     ev.Peer,
		Topic:    ev.Topic,
		Payload:  ev.Payload,
	}, true
}
