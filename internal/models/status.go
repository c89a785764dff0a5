package models

import "fmt"

// Status is the funding lifecycle state of a property.
type Status string

const (
	StatusOpen      Status = "open"
	StatusFunded    Status = "funded"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

// ParseStatus converts a string into a known Status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusOpen, StatusFunded, StatusExpired, StatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown property status %q", s)
}

// IsTerminal reports whether no transition may leave this status.
func (s Status) IsTerminal() bool {
	return s == StatusFunded || s == StatusExpired || s == StatusCancelled
}

func (s Status) String() string { return string(s) }
