package lending

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFrequency_EstimatedEndDate(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local) // Friday
	tests := []struct {
		f    Frequency
		n    int
		want time.Time
	}{
		{FrequencyDaily, 20, time.Date(2024, 3, 21, 0, 0, 0, 0, time.Local)},
		{FrequencyWeekly, 4, time.Date(2024, 3, 29, 0, 0, 0, 0, time.Local)},
		{FrequencyBiweekly, 2, time.Date(2024, 3, 31, 0, 0, 0, 0, time.Local)},
		{FrequencySemimonthly, 3, time.Date(2024, 4, 16, 0, 0, 0, 0, time.Local)},
		{FrequencyMonthly, 6, time.Date(2024, 9, 1, 0, 0, 0, 0, time.Local)},
		{FrequencyDailyWeekdays, 3, time.Date(2024, 3, 6, 0, 0, 0, 0, time.Local)},
	}
	for _, tt := range tests {
		t.Run(tt.f.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.f.EstimatedEndDate(start, tt.n))
		})
	}
}

func TestFrequency_DaysPerInstallment(t *testing.T) {
	assert.Equal(t, 1, FrequencyDaily.DaysPerInstallment())
	assert.Equal(t, 7, FrequencyWeekly.DaysPerInstallment())
	assert.Equal(t, 15, FrequencyBiweekly.DaysPerInstallment())
	assert.Equal(t, 1, FrequencySemimonthly.DaysPerInstallment())
	assert.Equal(t, 1, FrequencyMonthly.DaysPerInstallment())
	assert.Equal(t, 1, FrequencyDailyWeekdays.DaysPerInstallment())
	assert.False(t, Frequency("HOURLY").IsValid())
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2024, 3, 1, 23, 59, 0, 0, time.Local)
	b := time.Date(2024, 3, 2, 0, 1, 0, 0, time.Local)
	assert.Equal(t, 1, DaysBetween(a, b))
	assert.Equal(t, -1, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a))
	assert.Equal(t, 366, DaysBetween(time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local), time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)))
}
