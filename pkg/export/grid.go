package export

import (
	"fmt"

	"github.com/noah-isme/timetable-planner-api/internal/models"
	"github.com/noah-isme/timetable-planner-api/internal/scheduler"
)

const (
	gridStartHour = 8
	gridEndHour   = 20
)

type gridKey struct {
	day  models.Weekday
	hour int
}

// Grid places schedule items on a Saturday→Thursday by hour table.
type Grid struct {
	Days  []models.Weekday
	Hours []int
	cells map[gridKey][]string
	// Unplaced lists sessions whose timeslot could not be parsed.
	Unplaced []string
}

// BuildGrid lays every parseable session onto each hourly row it overlaps.
func BuildGrid(items []models.ScheduleItem) Grid {
	grid := Grid{Days: models.Weekdays, cells: make(map[gridKey][]string)}
	for hour := gridStartHour; hour < gridEndHour; hour++ {
		grid.Hours = append(grid.Hours, hour)
	}

	for _, item := range items {
		for i, raw := range item.Timeslots {
			label := item.CourseName
			if i < len(item.Locations) && item.Locations[i] != "" {
				label = fmt.Sprintf("%s (%s)", item.CourseName, item.Locations[i])
			}
			slot, ok := scheduler.ParseTimeslot(raw)
			if !ok {
				grid.Unplaced = append(grid.Unplaced, fmt.Sprintf("%s: %s", item.CourseName, raw))
				continue
			}
			for _, hour := range grid.Hours {
				if slot.Start < (hour+1)*60 && slot.End > hour*60 {
					key := gridKey{day: slot.Day, hour: hour}
					grid.cells[key] = append(grid.cells[key], label)
				}
			}
		}
	}
	return grid
}

// Cell returns the labels placed at a day and hour.
func (g Grid) Cell(day models.Weekday, hour int) []string {
	return g.cells[gridKey{day: day, hour: hour}]
}

// HourLabel formats an hourly row header.
func HourLabel(hour int) string {
	return fmt.Sprintf("%02d:00-%02d:00", hour, hour+1)
}
