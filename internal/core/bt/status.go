package bt

import (
	"fmt"
	"strings"
)

// Status is the result of evaluating a node. It is the only channel between
// a parent and its children.
type Status int

const (
	StatusSuccess Status = iota
	StatusFailure
	StatusRunning
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusFailure:
		return "Failure"
	case StatusRunning:
		return "Running"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Valid reports whether s is one of the three recognized statuses.
func (s Status) Valid() bool {
	return s == StatusSuccess || s == StatusFailure || s == StatusRunning
}

// ParseStatus parses the case-insensitive name of a status.
func ParseStatus(v string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "success":
		return StatusSuccess, nil
	case "failure":
		return StatusFailure, nil
	case "running":
		return StatusRunning, nil
	default:
		return StatusFailure, fmt.Errorf("unknown status: %q", v)
	}
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("cannot marshal out-of-domain status %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	v, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
