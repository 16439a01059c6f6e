package scheduler

import (
	"fmt"
	"strings"

	"github.com/noah-isme/timetable-planner-api/internal/models"
)

const (
	shiftMoreMorningLine   = "Most classes fall in the morning shift."
	shiftMoreAfternoonLine = "Most classes fall in the afternoon shift."
	shiftZeroMorningLine   = "No classes fall in the morning shift."
	shiftZeroAfternoonLine = "No classes fall in the afternoon shift."
	loadLine               = "The group's unit count was factored into the final score."

	// GeneralOnlyRationale explains a plan built without any exclusive group.
	GeneralOnlyRationale = "The schedule was built from general courses and your instructor preferences only, because no exclusive groups were defined."
	// EmptyCatalogRationale explains a plan built from an empty catalog.
	EmptyCatalogRationale = "No courses were available, so the schedule is empty."
)

func dayOffFreeLine(day models.Weekday) string {
	return fmt.Sprintf("%s is completely free.", day)
}

func dayOffBusyLine(day models.Weekday) string {
	return fmt.Sprintf("Unfortunately there are classes on %s.", day)
}

func preferredNoteLine(course models.Course, instructor models.Instructor) string {
	return fmt.Sprintf("General course %s was added with your preferred instructor (%s) without conflicts.", course.Name, instructor.Name)
}

// ComposeRationale renders the explanation attached to a group recommendation.
func ComposeRationale(group string, lines []string) string {
	return fmt.Sprintf("Group %s selected because: %s", group, strings.Join(lines, " "))
}
