package scheduler

import "github.com/noah-isme/timetable-planner-api/internal/models"

// Suggest builds the recommended timetable for a catalog and a set of preferences.
//
// Non-general courses are grouped into exclusive bundles and the best scoring bundle seeds
// the timetable. General courses are then layered on, preferred instructors first. When the
// catalog defines no groups only preferred general courses are placed.
func Suggest(courses []models.Course, prefs models.StudentPreferences) models.ScheduleResult {
	partition := PartitionCatalog(courses)
	if len(partition.Groups) == 0 {
		return suggestGeneralOnly(partition.General, prefs, len(courses) == 0)
	}

	scores := make([]GroupScore, 0, len(partition.Groups))
	for _, group := range partition.Groups {
		scores = append(scores, ScoreGroup(group, prefs))
	}
	winner, _ := SelectGroup(scores)

	assembly := Assemble(winner.Group.Courses, partition.General, prefs)
	lines := make([]string, 0, len(winner.Rationale)+len(assembly.Notes))
	lines = append(lines, winner.Rationale...)
	lines = append(lines, assembly.Notes...)

	return models.ScheduleResult{
		RecommendedGroup: winner.Group.Name,
		Schedule:         toScheduleItems(SortCourses(assembly.Courses)),
		Conflicts:        assembly.Conflicts,
		Rationale:        ComposeRationale(winner.Group.Name, lines),
	}
}

// GeneralOnly reports whether a result was produced without any exclusive group.
func GeneralOnly(result models.ScheduleResult) bool {
	return result.RecommendedGroup == models.GeneralOnlyGroup
}

func suggestGeneralOnly(general []models.Course, prefs models.StudentPreferences, empty bool) models.ScheduleResult {
	assembly := assemblePreferredOnly(general, prefs)
	rationale := GeneralOnlyRationale
	if empty {
		rationale = EmptyCatalogRationale
	}
	// Placement order is kept here, matching how the plan was built.
	return models.ScheduleResult{
		RecommendedGroup: models.GeneralOnlyGroup,
		Schedule:         toScheduleItems(assembly.Courses),
		Conflicts:        assembly.Conflicts,
		Rationale:        rationale,
	}
}
