package core

// State is the progress of one facade call.
type State int

const (
	StateIdle State = iota
	StateResolvingCredential
	StateBuildingOperations
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolvingCredential:
		return "resolving_credential"
	case StateBuildingOperations:
		return "building_operations"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}

	return "unknown"
}

// StateObserver is notified of every state transition of every call.
type StateObserver func(username, intent string, state State)
