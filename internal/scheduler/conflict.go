package scheduler

import "github.com/noah-isme/timetable-planner-api/internal/models"

// TimeslotsConflict reports whether two timeslot strings overlap on the same day.
// Unparseable slots never conflict.
func TimeslotsConflict(a, b string) bool {
	first, ok := ParseTimeslot(a)
	if !ok {
		return false
	}
	second, ok := ParseTimeslot(b)
	if !ok {
		return false
	}
	return first.Overlaps(second)
}

// CoursesConflict reports whether any session of a overlaps any session of b.
func CoursesConflict(a, b models.Course) bool {
	for _, left := range a.Sessions {
		for _, right := range b.Sessions {
			if TimeslotsConflict(left.Timeslot, right.Timeslot) {
				return true
			}
		}
	}
	return false
}

// CourseListHasConflict reports whether any two distinct courses in the list overlap.
func CourseListHasConflict(courses []models.Course) bool {
	for i := 0; i < len(courses); i++ {
		for j := i + 1; j < len(courses); j++ {
			if CoursesConflict(courses[i], courses[j]) {
				return true
			}
		}
	}
	return false
}

// ConflictingPairs lists every overlapping course pair in list order.
func ConflictingPairs(courses []models.Course) []models.ConflictPair {
	pairs := make([]models.ConflictPair, 0)
	for i := 0; i < len(courses); i++ {
		for j := i + 1; j < len(courses); j++ {
			if CoursesConflict(courses[i], courses[j]) {
				pairs = append(pairs, models.ConflictPair{
					First:  courses[i].ConflictLabel(),
					Second: courses[j].ConflictLabel(),
				})
			}
		}
	}
	return pairs
}
