package scheduler

import (
	"sort"

	"github.com/noah-isme/timetable-planner-api/internal/models"
)

// Assembly is the outcome of layering general courses on top of a group seed.
type Assembly struct {
	Courses   []models.Course
	Conflicts []string
	Notes     []string
}

type preferredCourse struct {
	course     models.Course
	instructor models.Instructor
}

// Assemble starts from the seed courses, then greedily adds preferred general courses
// followed by the rest of the general pool. A candidate is admitted only when the whole
// accumulated list stays conflict-free; rejected candidates are reported as conflicts.
func Assemble(seed, general []models.Course, prefs models.StudentPreferences) Assembly {
	acc := newAccumulator(seed)
	preferred, others := splitPreferred(general, prefs)

	for _, candidate := range preferred {
		if acc.tryAdd(candidate.course) {
			acc.notes = append(acc.notes, preferredNoteLine(candidate.course, candidate.instructor))
			continue
		}
		acc.conflicts = append(acc.conflicts, candidate.course.ConflictLabel())
	}

	seen := make(map[string]struct{})
	for _, candidate := range others {
		if acc.tryAdd(candidate) {
			continue
		}
		label := candidate.ConflictLabel()
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		acc.conflicts = append(acc.conflicts, label)
	}

	return acc.assembly()
}

// assemblePreferredOnly is used when the catalog has no groups: only general courses with a
// matching instructor preference are considered. Clashing candidates are skipped silently, so
// the conflict list of this path is always empty.
func assemblePreferredOnly(general []models.Course, prefs models.StudentPreferences) Assembly {
	acc := newAccumulator(nil)
	preferred, _ := splitPreferred(general, prefs)
	for _, candidate := range preferred {
		acc.tryAdd(candidate.course)
	}
	return acc.assembly()
}

// splitPreferred keeps catalog order in both halves. A course is preferred when a preference
// names its code together with one of its instructors.
func splitPreferred(general []models.Course, prefs models.StudentPreferences) ([]preferredCourse, []models.Course) {
	var (
		preferred []preferredCourse
		others    []models.Course
	)
	for _, course := range general {
		if instructor, ok := matchPreference(course, prefs.Instructors); ok {
			preferred = append(preferred, preferredCourse{course: course, instructor: instructor})
			continue
		}
		others = append(others, course)
	}
	return preferred, others
}

func matchPreference(course models.Course, prefs []models.InstructorPreference) (models.Instructor, bool) {
	for _, pref := range prefs {
		if pref.CourseCode != course.Code {
			continue
		}
		if instructor, ok := course.FindInstructor(pref.InstructorID); ok {
			return instructor, true
		}
	}
	return models.Instructor{}, false
}

type accumulator struct {
	courses   []models.Course
	conflicts []string
	notes     []string
}

func newAccumulator(seed []models.Course) *accumulator {
	return &accumulator{
		courses:   append([]models.Course(nil), seed...),
		conflicts: make([]string, 0),
		notes:     make([]string, 0),
	}
}

func (a *accumulator) tryAdd(course models.Course) bool {
	candidate := make([]models.Course, len(a.courses), len(a.courses)+1)
	copy(candidate, a.courses)
	candidate = append(candidate, course)
	if CourseListHasConflict(candidate) {
		return false
	}
	a.courses = candidate
	return true
}

func (a *accumulator) assembly() Assembly {
	return Assembly{Courses: a.courses, Conflicts: a.conflicts, Notes: a.notes}
}

// SortCourses returns a copy ordered by the weekday and start time of each course's first
// session. Courses whose first session cannot be parsed keep their relative order at the end.
func SortCourses(courses []models.Course) []models.Course {
	sorted := append([]models.Course(nil), courses...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return firstSlotKey(sorted[i]).less(firstSlotKey(sorted[j]))
	})
	return sorted
}

type sortKey struct {
	ok    bool
	day   int
	start int
}

func firstSlotKey(course models.Course) sortKey {
	if len(course.Sessions) == 0 {
		return sortKey{}
	}
	slot, ok := ParseTimeslot(course.Sessions[0].Timeslot)
	if !ok {
		return sortKey{}
	}
	return sortKey{ok: true, day: slot.Day.Index(), start: slot.Start}
}

func (k sortKey) less(other sortKey) bool {
	if k.ok != other.ok {
		return k.ok
	}
	if !k.ok {
		return false
	}
	if k.day != other.day {
		return k.day < other.day
	}
	return k.start < other.start
}

// toScheduleItems projects courses onto the result shape.
func toScheduleItems(courses []models.Course) []models.ScheduleItem {
	items := make([]models.ScheduleItem, 0, len(courses))
	for _, course := range courses {
		items = append(items, models.ScheduleItem{
			CourseCode: course.Code,
			CourseName: course.Name,
			Instructor: course.InstructorNames(),
			Timeslots:  course.Timeslots(),
			Locations:  course.Locations(),
			Group:      course.Group,
		})
	}
	return items
}
