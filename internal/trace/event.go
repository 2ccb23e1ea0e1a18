package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	// KindHeartbeat is emitted by Heartbeat regardless of level.
	KindHeartbeat
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	case KindHeartbeat:
		return "heartbeat"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity of an event. Coarser scopes have lower
// values, so a level admits every scope up to its bound.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // one CLI command over a module
	ScopePass                    // one pass over one method
	ScopeGraph                   // a traversal inside a pass
	ScopeNode                    // a single graph edit
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopePass:
		return "pass"
	case ScopeGraph:
		return "graph"
	case ScopeNode:
		return "node"
	default:
		return "unknown"
	}
}

// Event is a single trace record. Method is empty for events that do not
// belong to one method graph, such as driver spans and heartbeats.
type Event struct {
	Time     time.Time
	Seq      uint64 // stamped by the sink
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64
	Method   string
	Name     string // "observe", "quantize", "qdq", ...
	Detail   string
	Extra    map[string]string
}
