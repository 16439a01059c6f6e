// Package scheduler assembles a weekly timetable from a course catalog.
//
// Everything in this package is a pure function of its arguments: no I/O, no logging and no
// shared state, so callers may run it concurrently without coordination.
package scheduler

import (
	"strconv"
	"strings"

	"github.com/noah-isme/timetable-planner-api/internal/models"
)

// noonMinutes is the boundary between the morning and afternoon shifts.
const noonMinutes = 12 * 60

// Timeslot is a recurring weekly interval measured in minutes past midnight.
type Timeslot struct {
	Day   models.Weekday
	Start int
	End   int
}

// ParseTimeslot reads a "<weekday> <HH:MM>-<HH:MM>" string. ok is false when the string
// does not follow that shape; such slots never conflict and are never placed on a grid.
func ParseTimeslot(raw string) (slot Timeslot, ok bool) {
	fields := strings.Fields(raw)
	if len(fields) != 2 {
		return Timeslot{}, false
	}
	day, err := models.ParseWeekday(fields[0])
	if err != nil {
		return Timeslot{}, false
	}
	startRaw, endRaw, found := strings.Cut(fields[1], "-")
	if !found {
		return Timeslot{}, false
	}
	start, ok := parseClock(startRaw)
	if !ok {
		return Timeslot{}, false
	}
	end, ok := parseClock(endRaw)
	if !ok {
		return Timeslot{}, false
	}
	return Timeslot{Day: day, Start: start, End: end}, true
}

// Overlaps reports whether two slots share any minute. Touching endpoints do not overlap.
func (t Timeslot) Overlaps(other Timeslot) bool {
	return t.Day == other.Day && t.Start < other.End && t.End > other.Start
}

// Morning reports whether the slot finishes by noon.
func (t Timeslot) Morning() bool {
	return t.End <= noonMinutes
}

// parseClock reads an unsigned H:MM or HH:MM clock. 24:00 is accepted as end of day.
func parseClock(raw string) (int, bool) {
	hoursRaw, minutesRaw, found := strings.Cut(raw, ":")
	if !found || !digitsOnly(hoursRaw, 1, 2) || !digitsOnly(minutesRaw, 2, 2) {
		return 0, false
	}
	hours, err := strconv.Atoi(hoursRaw)
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(minutesRaw)
	if err != nil || minutes > 59 {
		return 0, false
	}
	if hours > 24 || (hours == 24 && minutes != 0) {
		return 0, false
	}
	return hours*60 + minutes, true
}

func digitsOnly(raw string, minLen, maxLen int) bool {
	if len(raw) < minLen || len(raw) > maxLen {
		return false
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// slotDay reads only the weekday token of a timeslot string.
func slotDay(raw string) (models.Weekday, bool) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return 0, false
	}
	day, err := models.ParseWeekday(fields[0])
	if err != nil {
		return 0, false
	}
	return day, true
}
