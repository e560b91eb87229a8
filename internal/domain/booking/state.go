package booking

import "github.com/shareit/service-shareit/internal/pkg/domain"

// State is the filter a caller applies when listing bookings.
type State string

const (
	StateAll      State = "ALL"
	StateCurrent  State = "CURRENT"
	StatePast     State = "PAST"
	StateFuture   State = "FUTURE"
	StateWaiting  State = "WAITING"
	StateRejected State = "REJECTED"
)

var knownStates = map[State]struct{}{
	StateAll: {}, StateCurrent: {}, StatePast: {}, StateFuture: {}, StateWaiting: {}, StateRejected: {},
}

// ParseState matches text exactly against the known states.
func ParseState(text string) (State, error) {
	s := State(text)
	if _, ok := knownStates[s]; !ok {
		return "", domain.NewRequestFailedError("Unknown state: " + text)
	}
	return s, nil
}
