package lending

import "time"

// Frequency is how often an installment falls due
type Frequency string

const (
	FrequencyDaily         Frequency = "DAILY"
	FrequencyWeekly        Frequency = "WEEKLY"
	FrequencyBiweekly      Frequency = "BIWEEKLY"
	FrequencySemimonthly   Frequency = "SEMIMONTHLY"
	FrequencyMonthly       Frequency = "MONTHLY"
	FrequencyDailyWeekdays Frequency = "DAILY_WEEKDAYS"
)

// IsValid checks if the frequency is known
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly,
		FrequencySemimonthly, FrequencyMonthly, FrequencyDailyWeekdays:
		return true
	}
	return false
}

// String returns the string representation of Frequency
func (f Frequency) String() string {
	return string(f)
}

// DaysPerInstallment is the elapsed-days divisor used by the overdue sweep.
// Frequencies without their own rule count one installment per day.
func (f Frequency) DaysPerInstallment() int {
	switch f {
	case FrequencyWeekly:
		return 7
	case FrequencyBiweekly:
		return 15
	default:
		return 1
	}
}

// EstimatedEndDate returns the due date of the last of n installments
// starting from start.
func (f Frequency) EstimatedEndDate(start time.Time, n int) time.Time {
	switch f {
	case FrequencyWeekly:
		return start.AddDate(0, 0, 7*n)
	case FrequencyBiweekly:
		return start.AddDate(0, 0, 15*n)
	case FrequencySemimonthly:
		return start.AddDate(0, n/2, 15*(n%2))
	case FrequencyMonthly:
		return start.AddDate(0, n, 0)
	case FrequencyDailyWeekdays:
		d := start
		for added := 0; added < n; {
			d = d.AddDate(0, 0, 1)
			if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
				added++
			}
		}
		return d
	default:
		return start.AddDate(0, 0, n)
	}
}

// DaysBetween counts whole calendar days from a to b, ignoring the time
// of day. It is negative when b is before a.
func DaysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// SameDay reports whether a and b fall on the same calendar date
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
