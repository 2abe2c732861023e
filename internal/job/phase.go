package job

// Phase is the coarse lifecycle state of a [Session].
type Phase int

const (
	Select Phase = iota
	Extracting
	Done
	Failed
)

func (p Phase) String() string {
	switch p {
	case Select:
		return "select"
	case Extracting:
		return "extracting"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return ""
	}
}

// Terminal reports whether p ends a run.
func (p Phase) Terminal() bool {
	return p == Done || p == Failed
}

// Reason explains why a run ended in [Failed].
type Reason int

const (
	NoReason Reason = iota
	Cancelled
	NetworkError
	ServerError
)

func (r Reason) String() string {
	switch r {
	case Cancelled:
		return "cancelled"
	case NetworkError:
		return "network_error"
	case ServerError:
		return "server_error"
	default:
		return ""
	}
}

// ParsePhase is the inverse of [Phase.String].
func ParsePhase(s string) (Phase, bool) {
	for _, p := range []Phase{Select, Extracting, Done, Failed} {
		if p.String() == s {
			return p, true
		}
	}
	return Select, false
}

// ParseReason is the inverse of [Reason.String]. The empty string parses as [NoReason].
func ParseReason(s string) (Reason, bool) {
	for _, r := range []Reason{NoReason, Cancelled, NetworkError, ServerError} {
		if r.String() == s {
			return r, true
		}
	}
	return NoReason, false
}
