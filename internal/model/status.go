package model

import "fmt"

// Status is the lifecycle state of a reservation. The set is closed: a
// reservation is PENDING until it is either approved or cancelled.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusCancelled Status = "CANCELLED"
)

// allowedTransitions encodes the permitted lifecycle moves. PENDING is the
// only state reservations are created in; nothing leaves CANCELLED.
var allowedTransitions = map[Status]map[Status]bool{
	StatusPending:   {StatusApproved: true, StatusCancelled: true},
	StatusApproved:  {StatusCancelled: true},
	StatusCancelled: {},
}

// ParseStatus validates s against the closed enumeration.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusCancelled:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown reservation status: %q", s)
	}
}

// Valid reports whether s is one of the three known states.
func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// CanTransitionTo reports whether the lifecycle permits moving from s to next.
func (s Status) CanTransitionTo(next Status) bool {
	return allowedTransitions[s][next]
}

// UnmarshalJSON rejects values outside the enumeration at the boundary.
func (s *Status) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("reservation status must be a JSON string")
	}
	parsed, err := ParseStatus(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
