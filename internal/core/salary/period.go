package salary

import "time"

// Window is one statistics period: the calendar date the resulting rows are
// keyed on, plus the inclusive created_at bounds used to fetch source offers.
// Bounds are rendered as "yyyy-MM-dd HH:mm:ss" strings for the offer source.
type Window struct {
	Date  time.Time
	Start string
	End   string
}

// DateString returns the window's statistic date in calendar-date form.
func (w Window) DateString() string {
	return w.Date.Format(DateLayout)
}

// YesterdayWindow is the daily salary period: the full calendar day before now.
func YesterdayWindow(now time.Time) Window {
	yesterday := dateOnly(now).AddDate(0, 0, -1)
	return Window{
		Date:  yesterday,
		Start: yesterday.Format(DateLayout) + " 00:00:00",
		End:   yesterday.Format(DateLayout) + " 23:59:59",
	}
}

// TrailingWeekWindow is the weekly trend period: the trailing 7 calendar days
// ending yesterday. The window's end date keys the resulting trend rows.
func TrailingWeekWindow(now time.Time) Window {
	today := dateOnly(now)
	start := today.AddDate(0, 0, -7)
	end := today.AddDate(0, 0, -1)
	return Window{
		Date:  end,
		Start: start.Format(DateLayout) + " 00:00:00",
		End:   end.Format(DateLayout) + " 23:59:59",
	}
}

// PreviousMonthWindow is the monthly trend period: the previous full calendar
// month, keyed on its last day.
func PreviousMonthWindow(now time.Time) Window {
	today := dateOnly(now)
	end := today.AddDate(0, 0, -today.Day())
	start := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, end.Location())
	return Window{
		Date:  end,
		Start: start.Format(DateLayout) + " 00:00:00",
		End:   end.Format(DateLayout) + " 23:59:59",
	}
}

// RetentionCutoff returns the calendar date one year before now. Statistic
// rows dated strictly before the cutoff are eligible for deletion.
func RetentionCutoff(now time.Time) string {
	return dateOnly(now).AddDate(-1, 0, 0).Format(DateLayout)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
