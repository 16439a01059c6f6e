package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/timetable-planner-api/internal/models"
	"github.com/noah-isme/timetable-planner-api/internal/scheduler"
)

type expectation struct {
	RecommendedGroup  *string  `json:"recommendedGroup"`
	Schedule          []string `json:"schedule"`
	Conflicts         []string `json:"conflicts"`
	RationaleContains string   `json:"rationaleContains"`
}

type fixture struct {
	Name        string                    `json:"name"`
	Critical    bool                      `json:"critical"`
	Courses     []models.Course           `json:"courses"`
	Preferences models.StudentPreferences `json:"preferences"`
	Expected    *expectation              `json:"expected"`

	path string
}

type outcome struct {
	Fixture  fixture
	Stable   bool
	Diffs    []string
	Duration time.Duration
	Result   models.ScheduleResult
}

func main() {
	var (
		dir     string
		verbose bool
	)

	flag.StringVar(&dir, "fixtures", filepath.Join("scripts", "plan_check", "fixtures"), "Directory of JSON fixtures")
	flag.BoolVar(&verbose, "v", false, "Print every recommended schedule")
	flag.Parse()

	fixtures, err := loadFixtures(dir)
	if err != nil {
		log.Fatalf("failed to load fixtures: %v", err)
	}

	var (
		outcomes     []outcome
		breaking     int
		optionalDiff int
	)
	for _, fx := range fixtures {
		out := check(fx)
		if !out.Stable || len(out.Diffs) > 0 {
			if fx.Critical {
				breaking++
			} else {
				optionalDiff++
			}
		}
		outcomes = append(outcomes, out)
	}

	printReport(outcomes, verbose)

	fmt.Printf("Breaking diffs: %d, Optional diffs: %d\n", breaking, optionalDiff)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadFixtures(dir string) ([]fixture, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no fixtures found in %s", dir)
	}
	sort.Strings(paths)

	fixtures := make([]fixture, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var fx fixture
		if err := json.Unmarshal(data, &fx); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		fx.path = path
		if fx.Name == "" {
			fx.Name = strings.TrimSuffix(filepath.Base(path), ".json")
		}
		fixtures = append(fixtures, fx)
	}
	return fixtures, nil
}

// check runs the engine twice so order-dependent or stateful behaviour shows up as instability.
func check(fx fixture) outcome {
	start := time.Now()
	first := scheduler.Suggest(fx.Courses, fx.Preferences)
	second := scheduler.Suggest(fx.Courses, fx.Preferences)

	out := outcome{
		Fixture:  fx,
		Stable:   reflect.DeepEqual(first, second),
		Duration: time.Since(start),
		Result:   first,
	}
	if fx.Expected != nil {
		out.Diffs = compare(*fx.Expected, first)
	}
	return out
}

func compare(want expectation, got models.ScheduleResult) []string {
	var diffs []string
	if want.RecommendedGroup != nil && *want.RecommendedGroup != got.RecommendedGroup {
		diffs = append(diffs, fmt.Sprintf("recommendedGroup: want %q, got %q", *want.RecommendedGroup, got.RecommendedGroup))
	}
	if want.Schedule != nil {
		codes := make([]string, len(got.Schedule))
		for i, item := range got.Schedule {
			codes[i] = item.CourseCode
		}
		if !reflect.DeepEqual(want.Schedule, codes) {
			diffs = append(diffs, fmt.Sprintf("schedule: want %v, got %v", want.Schedule, codes))
		}
	}
	if want.Conflicts != nil && !reflect.DeepEqual(want.Conflicts, got.Conflicts) {
		diffs = append(diffs, fmt.Sprintf("conflicts: want %v, got %v", want.Conflicts, got.Conflicts))
	}
	if want.RationaleContains != "" && !strings.Contains(got.Rationale, want.RationaleContains) {
		diffs = append(diffs, fmt.Sprintf("rationale does not mention %q", want.RationaleContains))
	}
	return diffs
}

func printReport(results []outcome, verbose bool) {
	fmt.Println("Plan Check Report")
	fmt.Println("=================")
	for _, res := range results {
		status := "OK"
		if !res.Stable || len(res.Diffs) > 0 {
			status = "DIFF"
		}
		fmt.Printf("[%s] %s (%s)\n", status, res.Fixture.Name, res.Fixture.path)
		fmt.Printf("  Stable: %t | Critical: %t | Duration: %s\n", res.Stable, res.Fixture.Critical, res.Duration)
		for _, diff := range res.Diffs {
			fmt.Printf("  - %s\n", diff)
		}
		if verbose {
			fmt.Printf("  Group: %s\n", res.Result.RecommendedGroup)
			for _, item := range res.Result.Schedule {
				fmt.Printf("    %s %s [%s]\n", item.CourseCode, item.CourseName, item.TimeslotLabel())
			}
		}
	}
}
