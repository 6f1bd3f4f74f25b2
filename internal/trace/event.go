package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	// KindSpanBegin marks the start of an operation.
	KindSpanBegin Kind = iota + 1
	// KindSpanEnd marks the end of an operation.
	KindSpanEnd
	// KindPoint is an instant event.
	KindPoint
	// KindError reports a failure; emitted at every level except off.
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Scope is the granularity of an event. Lower values are coarser.
type Scope uint8

const (
	// ScopeDriver covers CLI commands.
	ScopeDriver Scope = iota + 1
	// ScopePass covers whole passes over an archive (decode, rename, encode).
	ScopePass
	// ScopeClass covers a single class.
	ScopeClass
	// ScopeMethod covers a single method.
	ScopeMethod
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopePass:
		return "pass"
	case ScopeClass:
		return "class"
	case ScopeMethod:
		return "method"
	default:
		return "unknown"
	}
}

// Event is a single trace record.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for root spans
	Name     string // e.g. "rename", "class:com.acme.Widget"
	Detail   string
	Extra    map[string]string
}
