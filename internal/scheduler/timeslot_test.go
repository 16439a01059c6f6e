package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-planner-api/internal/models"
)

func TestParseTimeslot(t *testing.T) {
	slot, ok := ParseTimeslot("Monday 08:30-10:00")
	require.True(t, ok)
	assert.Equal(t, Timeslot{Day: models.Monday, Start: 510, End: 600}, slot)

	slot, ok = ParseTimeslot("  sat   13:00-14:30 ")
	require.True(t, ok)
	assert.Equal(t, models.Saturday, slot.Day)
	assert.Equal(t, 780, slot.Start)

	slot, ok = ParseTimeslot("سه‌شنبه 10:00-12:00")
	require.True(t, ok)
	assert.Equal(t, models.Tuesday, slot.Day)

	slot, ok = ParseTimeslot("Thursday 8:00-24:00")
	require.True(t, ok)
	assert.Equal(t, Timeslot{Day: models.Thursday, Start: 480, End: 1440}, slot)
}

func TestParseTimeslotRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"Monday",
		"Monday 08:00",
		"Monday 08:00-10:00 extra",
		"Friday 08:00-10:00",
		"Monday 8-10",
		"Monday aa:00-10:00",
		"Monday 08:75-10:00",
		"Monday 08:00-24:59",
		"Monday 25:00-26:00",
		"Monday +8:00-10:00",
		"Monday 08:00--10:00",
		"Monday 08:+5-10:00",
		"Monday 08:5-10:00",
	}
	for _, raw := range cases {
		_, ok := ParseTimeslot(raw)
		assert.False(t, ok, raw)
	}
}

func TestTimeslotsConflict(t *testing.T) {
	assert.True(t, TimeslotsConflict("Saturday 10:00-12:00", "Saturday 11:00-13:00"))
	assert.True(t, TimeslotsConflict("Saturday 10:00-12:00", "Saturday 10:30-11:00"))
	assert.False(t, TimeslotsConflict("Saturday 10:00-12:00", "Saturday 12:00-13:00"), "touching boundaries")
	assert.False(t, TimeslotsConflict("Saturday 10:00-12:00", "Sunday 10:00-12:00"))
	assert.False(t, TimeslotsConflict("Saturday 10:00-12:00", "Saturday ??"))
	assert.False(t, TimeslotsConflict("garbage", "garbage"))
}

func TestTimeslotsConflictIsSymmetric(t *testing.T) {
	slots := []string{
		"Saturday 08:00-10:00",
		"Saturday 09:00-11:00",
		"Saturday 10:00-12:00",
		"Monday 09:00-11:00",
		"Monday 9",
	}
	for _, a := range slots {
		for _, b := range slots {
			assert.Equal(t, TimeslotsConflict(a, b), TimeslotsConflict(b, a), "%s vs %s", a, b)
		}
	}
}
