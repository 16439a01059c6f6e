package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShiftPreference(t *testing.T) {
	cases := map[string]ShiftPreference{
		"":               ShiftNone,
		" More-Morning ": ShiftMoreMorning,
		"zero-afternoon": ShiftZeroAfternoon,
		"больше-утром":   ShiftMoreMorning,
		"больше-днем":    ShiftMoreAfternoon,
		"меньше-утром":   ShiftZeroMorning,
		"Меньше-Днем":    ShiftZeroAfternoon,
	}
	for raw, want := range cases {
		got, err := ParseShiftPreference(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseShiftPreference("evenings")
	assert.Error(t, err)
}
