package tracing

import (
	"net/url"

	"github.com/Station-Manager/errors"
)

// SelectorKind discriminates the two ways a trace session selects traffic.
type SelectorKind int8

const (
	// SelectorClientID captures every eligible publish from one named client.
	SelectorClientID SelectorKind = iota + 1
	// SelectorTopic captures every eligible publish whose topic matches a
	// wildcard pattern.
	SelectorTopic
)

func (k SelectorKind) String() string {
	switch k {
	case SelectorClientID:
		return "clientid"
	case SelectorTopic:
		return "topic"
	default:
		return "unknown"
	}
}

// Selector identifies which traffic a trace session captures. It is the
// registry key: two selectors are equal iff both kind and value match, and a
// selector has at most one active session at a time.
type Selector struct {
	Kind  SelectorKind
	Value string
}

// ClientIDSelector selects the publishes of one client id.
func ClientIDSelector(id string) Selector {
	return Selector{Kind: SelectorClientID, Value: id}
}

// TopicSelector selects publishes whose topic matches pattern (see Matches).
func TopicSelector(pattern string) Selector {
	return Selector{Kind: SelectorTopic, Value: pattern}
}

func (sel Selector) String() string {
	return sel.Kind.String() + ":" + sel.Value
}

// SinkID derives the deterministic sink name for this selector. The kind
// prefix keeps the two namespaces disjoint, and the value is query-escaped so
// topic separators and wildcards never leak into the sink naming scheme.
func (sel Selector) SinkID() string {
	switch sel.Kind {
	case SelectorClientID:
		return sinkPrefixClientID + url.QueryEscape(sel.Value)
	case SelectorTopic:
		return sinkPrefixTopic + url.QueryEscape(sel.Value)
	default:
		return emptyString
	}
}

func (sel Selector) validate() error {
	const op errors.Op = "tracing.Selector.validate"
	switch sel.Kind {
	case SelectorClientID, SelectorTopic:
	default:
		return errors.New(op).Msg(errMsgBadSelectorKind)
	}
	if sel.Value == emptyString {
		return errors.New(op).Msg(errMsgEmptySelector)
	}
	return nil
}

// FilterFunc decides, per record, whether an installed sink captures it.
// A filter is bound to one selector at install time and is immutable for the
// sink's lifetime; changing it means removing and reinstalling the sink.
type FilterFunc func(Record) bool

// Filter builds the per-session predicate for this selector. Records lacking
// the metadata the selector keys on are rejected, as is everything when the
// selector kind is unrecognized (default-reject).
func (sel Selector) Filter() FilterFunc {
	switch sel.Kind {
	case SelectorClientID:
		id := sel.Value
		return func(r Record) bool {
			return r.ClientID != emptyString && r.ClientID == id
		}
	case SelectorTopic:
		pattern := sel.Value
		return func(r Record) bool {
			return r.Topic != emptyString && Matches(pattern, r.Topic)
		}
	default:
		return func(Record) bool { return false }
	}
}
