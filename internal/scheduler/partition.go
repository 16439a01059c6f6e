package scheduler

import "github.com/noah-isme/timetable-planner-api/internal/models"

// Group is an exclusive bundle of non-general courses.
type Group struct {
	Name    string
	Courses []models.Course
}

// Partition splits a catalog into the general pool and the exclusive groups.
type Partition struct {
	General []models.Course
	// Groups are ordered by the first time the catalog mentions them.
	Groups []Group
	// Ungrouped holds non-general courses without a group id. They take no part in planning.
	Ungrouped []models.Course
}

// PartitionCatalog buckets courses, preserving catalog order everywhere. General courses
// land in the general pool even when they carry a group id.
func PartitionCatalog(courses []models.Course) Partition {
	var p Partition
	index := make(map[string]int)
	for _, course := range courses {
		switch {
		case course.Category.IsGeneral():
			p.General = append(p.General, course)
		case course.Group == "":
			p.Ungrouped = append(p.Ungrouped, course)
		default:
			i, ok := index[course.Group]
			if !ok {
				i = len(p.Groups)
				index[course.Group] = i
				p.Groups = append(p.Groups, Group{Name: course.Group})
			}
			p.Groups[i].Courses = append(p.Groups[i].Courses, course)
		}
	}
	return p
}
