package scheduler

import "github.com/noah-isme/timetable-planner-api/internal/models"

const (
	dayOffReward  = 100
	dayOffPenalty = 50
	shiftReward   = 50
	perCourseLoad = 2
)

// GroupScore is the preference alignment of one exclusive group.
type GroupScore struct {
	Group     Group
	Score     int
	Rationale []string
}

// ScoreGroup rates a group against the student's soft preferences.
func ScoreGroup(group Group, prefs models.StudentPreferences) GroupScore {
	result := GroupScore{Group: group, Rationale: make([]string, 0, 3)}

	if prefs.DayOff != nil {
		day := *prefs.DayOff
		if hasClassOn(group.Courses, day) {
			result.Score -= dayOffPenalty
			result.Rationale = append(result.Rationale, dayOffBusyLine(day))
		} else {
			result.Score += dayOffReward
			result.Rationale = append(result.Rationale, dayOffFreeLine(day))
		}
	}

	if prefs.Shift != models.ShiftNone {
		morning, afternoon := shiftCounts(group.Courses)
		if line, ok := shiftSatisfied(prefs.Shift, morning, afternoon); ok {
			result.Score += shiftReward
			result.Rationale = append(result.Rationale, line)
		}
	}

	result.Score -= perCourseLoad * len(group.Courses)
	result.Rationale = append(result.Rationale, loadLine)
	return result
}

// SelectGroup returns the highest scoring group. Ties keep the earlier group.
func SelectGroup(scores []GroupScore) (GroupScore, bool) {
	if len(scores) == 0 {
		return GroupScore{}, false
	}
	best := scores[0]
	for _, candidate := range scores[1:] {
		if candidate.Score > best.Score {
			best = candidate
		}
	}
	return best, true
}

func hasClassOn(courses []models.Course, day models.Weekday) bool {
	for _, course := range courses {
		for _, session := range course.Sessions {
			if d, ok := slotDay(session.Timeslot); ok && d == day {
				return true
			}
		}
	}
	return false
}

// shiftCounts counts slots ending by noon as morning; everything else, unparseable slots
// included, counts as afternoon.
func shiftCounts(courses []models.Course) (morning, afternoon int) {
	total := 0
	for _, course := range courses {
		for _, session := range course.Sessions {
			total++
			if slot, ok := ParseTimeslot(session.Timeslot); ok && slot.Morning() {
				morning++
			}
		}
	}
	return morning, total - morning
}

func shiftSatisfied(pref models.ShiftPreference, morning, afternoon int) (string, bool) {
	switch {
	case pref == models.ShiftMoreMorning && morning >= afternoon:
		return shiftMoreMorningLine, true
	case pref == models.ShiftMoreAfternoon && afternoon >= morning:
		return shiftMoreAfternoonLine, true
	case pref == models.ShiftZeroMorning && morning == 0:
		return shiftZeroMorningLine, true
	case pref == models.ShiftZeroAfternoon && afternoon == 0:
		return shiftZeroAfternoonLine, true
	default:
		return "", false
	}
}
