package schedule

import (
	"time"

	"github.com/julianstephens/seasonal/internal/constants"
)

// DayDate converts a day number into the calendar date it falls on.
func DayDate(day int) time.Time {
	return constants.ScheduleStartDate.AddDate(0, 0, day-1)
}

// FormatDayDate renders a day as "Ngày DD/MM/YYYY".
func FormatDayDate(day int) string {
	return "Ngày " + DayDate(day).Format(constants.DayLabelFormat)
}
