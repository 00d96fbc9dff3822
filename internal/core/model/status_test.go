package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverdueBreakPrefersMicro(t *testing.T) {
	assert.Equal(t, BreakMicro, TimerStatus{MicroIsOverdue: true, RestIsOverdue: true}.OverdueBreak())
	assert.Equal(t, BreakRest, TimerStatus{RestIsOverdue: true}.OverdueBreak())
	assert.Equal(t, BreakNone, TimerStatus{}.OverdueBreak())
}

func TestParseBreakType(t *testing.T) {
	breakType, err := ParseBreakType("rest")
	require.NoError(t, err)
	assert.Equal(t, BreakRest, breakType)

	for _, value := range []string{"", "Micro", "daily"} {
		_, err := ParseBreakType(value)
		assert.ErrorIs(t, err, ErrInvalidBreakType, value)
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "0:00", FormatClock(-3))
	assert.Equal(t, "0:09", FormatClock(9))
	assert.Equal(t, "5:00", FormatClock(300))
	assert.Equal(t, "61:01", FormatClock(3661))
}

func TestComplianceRate(t *testing.T) {
	assert.Equal(t, 0.0, DailyStats{}.ComplianceRate())
	stats := DailyStats{MicroPromptedTaken: 3, RestPromptedTaken: 1, MicroPostponed: 1, TotalUsageSeconds: 5400}
	assert.InDelta(t, 80.0, stats.ComplianceRate(), 0.001)
	assert.InDelta(t, 1.5, stats.UsageHours(), 0.001)
}
