package crowdsale

import (
	"fmt"
	"time"
)

// Status represents the phase of the sale. It is never stored, it is derived
// from the clock, the window, the goal and the total raised on every read.
type Status uint8

// Set of possible sale phases.
const (
	StatusNotOpen Status = iota
	StatusOpen
	StatusGoalReached
	StatusGoalNotReached
)

var statusNames = map[Status]string{
	StatusNotOpen:        "NOT_OPEN",
	StatusOpen:           "OPEN",
	StatusGoalReached:    "GOAL_REACHED",
	StatusGoalNotReached: "GOAL_NOT_REACHED",
}

// String implements the fmt.Stringer interface.
func (s Status) String() string {
	if name, exists := statusNames[s]; exists {
		return name
	}
	return fmt.Sprintf("STATUS(%d)", uint8(s))
}

// MarshalText implements the encoding.TextMarshaler interface.
func (s Status) MarshalText() ([]byte, error) {
	name, exists := statusNames[s]
	if !exists {
		return nil, fmt.Errorf("unknown status %d", uint8(s))
	}
	return []byte(name), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (s *Status) UnmarshalText(data []byte) error {
	for status, name := range statusNames {
		if name == string(data) {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", data)
}

// Terminal reports whether the outcome of the sale has been determined.
func (s Status) Terminal() bool {
	return s == StatusGoalReached || s == StatusGoalNotReached
}

// =============================================================================

// Window represents the time box in which contributions are accepted. The
// open time is inclusive and the close time is exclusive.
type Window struct {
	OpenTime  time.Time `json:"open_time"`
	CloseTime time.Time `json:"close_time"`
}

// Goal represents the soft cap and hard cap for the total raised.
type Goal struct {
	Min uint64 `json:"goal_limit_min"`
	Max uint64 `json:"goal_limit_max"`
}

// DeriveStatus computes the status of a sale. Time is compared at a
// resolution of seconds.
//
//	now < open            NOT_OPEN
//	open <= now < close   GOAL_REACHED when total >= max, else OPEN
//	now >= close          GOAL_REACHED when total >= min, else GOAL_NOT_REACHED
func DeriveStatus(now time.Time, window Window, total uint64, goal Goal) Status {
	sec := now.Unix()

	if sec < window.OpenTime.Unix() {
		return StatusNotOpen
	}

	if sec < window.CloseTime.Unix() {
		if total >= goal.Max {
			return StatusGoalReached
		}
		return StatusOpen
	}

	if total >= goal.Min {
		return StatusGoalReached
	}
	return StatusGoalNotReached
}
