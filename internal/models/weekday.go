package models

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is a day of the six-day academic week, Saturday through Thursday.
type Weekday int

const (
	Saturday Weekday = iota
	Sunday
	Monday
	Tuesday
	Wednesday
	Thursday
)

// Weekdays lists the academic week in display order.
var Weekdays = []Weekday{Saturday, Sunday, Monday, Tuesday, Wednesday, Thursday}

var weekdayNames = [...]string{"Saturday", "Sunday", "Monday", "Tuesday", "Wednesday", "Thursday"}

var calendarDays = [...]time.Weekday{time.Saturday, time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday}

var weekdayAliases = map[string]Weekday{
	"saturday":  Saturday,
	"sat":       Saturday,
	"شنبه":      Saturday,
	"sunday":    Sunday,
	"sun":       Sunday,
	"یکشنبه":    Sunday,
	"monday":    Monday,
	"mon":       Monday,
	"دوشنبه":    Monday,
	"tuesday":   Tuesday,
	"tue":       Tuesday,
	"سه‌شنبه":   Tuesday,
	"سهشنبه":    Tuesday,
	"wednesday": Wednesday,
	"wed":       Wednesday,
	"چهارشنبه":  Wednesday,
	"thursday":  Thursday,
	"thu":       Thursday,
	"پنجشنبه":   Thursday,
}

// ParseWeekday maps a day token onto the academic week. Unknown tokens are rejected.
func ParseWeekday(raw string) (Weekday, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if day, ok := weekdayAliases[key]; ok {
		return day, nil
	}
	return 0, fmt.Errorf("unknown weekday %q", raw)
}

// Valid reports whether d is one of the six academic weekdays.
func (d Weekday) Valid() bool {
	return d >= Saturday && d <= Thursday
}

// Index returns the position of the day in the Saturday→Thursday order.
func (d Weekday) Index() int {
	return int(d)
}

// Calendar maps the day onto the Gregorian weekday.
func (d Weekday) Calendar() time.Weekday {
	return calendarDays[d]
}

// String returns the English day name.
func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// MarshalText encodes the day as its English name.
func (d Weekday) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid weekday %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText accepts any token understood by ParseWeekday.
func (d *Weekday) UnmarshalText(text []byte) error {
	day, err := ParseWeekday(string(text))
	if err != nil {
		return err
	}
	*d = day
	return nil
}
