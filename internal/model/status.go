package model

// Status is the lifecycle state of a registration.
type Status string

const (
	StatusRegistered Status = "registered"
	StatusAttended   Status = "attended"
	StatusCancelled  Status = "cancelled"
)

// transitions is the closed set of allowed status changes. Attended and
// cancelled are terminal: no entry leaves them.
var transitions = map[Status]map[Status]bool{
	StatusRegistered: {
		StatusAttended:  true,
		StatusCancelled: true,
	},
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusRegistered, StatusAttended, StatusCancelled:
		return true
	}
	return false
}

// Active reports whether a registration in this status occupies a capacity
// slot. Cancelled registrations free their slot.
func (s Status) Active() bool {
	return s == StatusRegistered || s == StatusAttended
}

// Terminal reports whether no transition leaves this status.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// CanTransitionTo reports whether the s → next transition is allowed.
func (s Status) CanTransitionTo(next Status) bool {
	return transitions[s][next]
}
