package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type State string

const (
	StateIdle      State = "IDLE"
	StateArmed     State = "ARMED"
	StateTriggered State = "TRIGGERED"
	StateCleared   State = "CLEARED"
)

// Config is a user's safe-exit protocol setup. Only State cycles; the
// record itself is never auto-deleted.
type Config struct {
	UserID           string     `json:"user_id"`
	TargetTime       *TimeOfDay `json:"target_time"` // nil until configured
	NotifyContactIDs []string   `json:"notify_contact_ids"`
	State            State      `json:"state"`
	ArmedAt          *time.Time `json:"armed_at,omitempty"`
}

// TimeOfDay is a wall-clock "HH:MM" deadline.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ParseTimeOfDay parses "HH:MM" in 24-hour form.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("malformed time of day %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return TimeOfDay{}, fmt.Errorf("malformed hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("malformed minute in %q", s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

// NextAfter returns the first instant matching the time of day strictly
// after ref. A deadline already past for the current day rolls over to the
// next day rather than firing immediately.
func (t TimeOfDay) NextAfter(ref time.Time) time.Time {
	candidate := time.Date(ref.Year(), ref.Month(), ref.Day(), t.Hour, t.Minute, 0, 0, ref.Location())
	if !candidate.After(ref) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}
