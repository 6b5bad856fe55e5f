package entity

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
)

var statusRank = map[Status]int{
	StatusPending:   0,
	StatusConfirmed: 1,
	StatusReady:     2,
	StatusCompleted: 3,
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Rank returns the position of s in the forward lifecycle, or -1 for
// unknown values.
func (s Status) Rank() int {
	r, ok := statusRank[s]
	if !ok {
		return -1
	}
	return r
}

// Before reports whether s sorts strictly earlier than other in the
// lifecycle. Unknown statuses never sort before anything.
func (s Status) Before(other Status) bool {
	sr, or := s.Rank(), other.Rank()
	return sr >= 0 && or >= 0 && sr < or
}

// CanTransition reports whether moving from s to next is a legal forward
// step. Transitions only advance one state at a time and nothing leaves
// completed.
func (s Status) CanTransition(next Status) bool {
	sr, nr := s.Rank(), next.Rank()
	if sr < 0 || nr < 0 {
		return false
	}
	return nr == sr+1
}
