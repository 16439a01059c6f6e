package export

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/noah-isme/timetable-planner-api/internal/models"
	"github.com/noah-isme/timetable-planner-api/internal/scheduler"
)

const defaultWeeks = 16

// CalendarOptions anchor the weekly timetable onto real dates.
type CalendarOptions struct {
	Name      string
	TermStart time.Time
	Weeks     int
	Location  *time.Location
	Stamp     time.Time
}

// ICSExporter renders a timetable as weekly recurring calendar events.
type ICSExporter struct{}

// NewICSExporter constructs an ICS exporter.
func NewICSExporter() *ICSExporter {
	return &ICSExporter{}
}

// Render emits one VEVENT per parseable session, recurring weekly from the first matching
// weekday on or after the term start. Unparseable sessions are skipped.
func (e *ICSExporter) Render(result models.ScheduleResult, opts CalendarOptions) ([]byte, error) {
	if opts.TermStart.IsZero() {
		return nil, fmt.Errorf("ics requires a term start date")
	}
	if opts.Weeks <= 0 {
		opts.Weeks = defaultWeeks
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Stamp.IsZero() {
		opts.Stamp = time.Now()
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//timetable-planner//EN")
	if opts.Name != "" {
		cal.SetName(opts.Name)
	}

	start := opts.TermStart.In(opts.Location)
	anchor := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, opts.Location)

	for i, item := range result.Schedule {
		for j, raw := range item.Timeslots {
			slot, ok := scheduler.ParseTimeslot(raw)
			if !ok {
				continue
			}
			day := firstOnOrAfter(anchor, slot.Day.Calendar())
			event := cal.AddEvent(fmt.Sprintf("%s-%d-%d@timetable-planner", item.CourseCode, i, j))
			event.SetDtStampTime(opts.Stamp)
			event.SetStartAt(day.Add(time.Duration(slot.Start) * time.Minute))
			event.SetEndAt(day.Add(time.Duration(slot.End) * time.Minute))
			event.SetSummary(item.CourseName)
			if j < len(item.Locations) && item.Locations[j] != "" {
				event.SetLocation(item.Locations[j])
			}
			if item.Instructor != "" {
				event.SetDescription(fmt.Sprintf("%s, %s", item.CourseCode, item.Instructor))
			}
			event.AddRrule(fmt.Sprintf("FREQ=WEEKLY;COUNT=%d", opts.Weeks))
		}
	}

	return []byte(cal.Serialize()), nil
}

func firstOnOrAfter(date time.Time, weekday time.Weekday) time.Time {
	offset := (int(weekday) - int(date.Weekday()) + 7) % 7
	return date.AddDate(0, 0, offset)
}
