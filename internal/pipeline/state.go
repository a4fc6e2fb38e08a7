package pipeline

// State is a step of a Recognize call.
type State int

const (
	StateIdle State = iota
	StatePreprocessing
	StateRecognizing
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreprocessing:
		return "preprocessing"
	case StateRecognizing:
		return "recognizing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// StateObserver is notified of every state transition, synchronously and in
// order, from the goroutine running the call.
type StateObserver func(from, to State)
