package queue

// State is the position of the queue in its per-input state machine:
//
//	Idle -> Splitting -> ImmediateDispatch* -> Queued -> Searching ->
//	{Resolved, NotFound, Cancelled} -> Queued | Idle
type State int

const (
	StateIdle State = iota
	StateSplitting
	StateImmediateDispatch
	StateQueued
	StateSearching
	StateResolved
	StateNotFound
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateSplitting:
		return "splitting"
	case StateImmediateDispatch:
		return "immediate-dispatch"
	case StateQueued:
		return "queued"
	case StateSearching:
		return "searching"
	case StateResolved:
		return "resolved"
	case StateNotFound:
		return "not-found"
	case StateCancelled:
		return "cancelled"
	default:
		return "idle"
	}
}

// Disposition is how one sub-command ended.
type Disposition int

const (
	Opened Disposition = iota
	AlreadyRunning
	NotFound
	Invalid
	Skipped
	Failed
	Cancelled
)

func (d Disposition) String() string {
	switch d {
	case Opened:
		return "opened"
	case AlreadyRunning:
		return "already-running"
	case NotFound:
		return "not-found"
	case Invalid:
		return "invalid"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return "cancelled"
	}
}

// Outcome records one processed sub-command.
type Outcome struct {
	Raw         string
	Kind        Kind
	Disposition Disposition
	// Target is what was opened, or would have been.
	Target string
	Err    error
}

// Summary is the result of one Submit.
type Summary struct {
	Outcomes []Outcome
	// Cancelled is set when a search was cancelled; remaining sub-commands
	// were dropped.
	Cancelled bool
}

// Opened returns the targets that were opened, in order.
func (s Summary) Opened() []string {
	var out []string
	for _, o := range s.Outcomes {
		if o.Disposition == Opened {
			out = append(out, o.Target)
		}
	}
	return out
}
