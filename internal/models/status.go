package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Status is the operating state reported by a drone.
type Status uint8

// Known drone statuses. The zero value is deliberately not a valid status.
const (
	StatusUnknown Status = iota
	StatusIdle
	StatusMoving
	StatusJammed
)

// ErrUnknownStatus is returned when a status string is not one of IDLE, MOVING or JAMMED.
var ErrUnknownStatus = errors.New("unknown drone status")

var statusNames = map[Status]string{
	StatusIdle:   "IDLE",
	StatusMoving: "MOVING",
	StatusJammed: "JAMMED",
}

// ParseStatus converts the wire representation into a Status.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "IDLE":
		return StatusIdle, nil
	case "MOVING":
		return StatusMoving, nil
	case "JAMMED":
		return StatusJammed, nil
	default:
		return StatusUnknown, fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

// MarshalJSON encodes the status as its upper-case name.
func (s Status) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStatus, uint8(s))
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes IDLE, MOVING or JAMMED and rejects anything else.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode drone status: %w", err)
	}

	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed

	return nil
}
