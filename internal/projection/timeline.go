package projection

import (
	"time"

	"taskdeck/internal/models"
)

// DayWidth is the fixed horizontal size of one day cell.
const DayWidth = 40

const dayMillis = 24 * 60 * 60 * 1000

// windowPadDays extends the window a week past the outermost dates so
// bars never touch the edge.
const windowPadDays = 7

// defaultWindowDays is the window length when no task has a date.
const defaultWindowDays = 30

// Bar is a task's horizontal placement, in the shared pixel-per-day
// coordinate system anchored at the window start.
type Bar struct {
	Task   models.Task
	Offset int
	Width  int
}

// DayCell is one column of the day header row.
type DayCell struct {
	Date    models.Date
	Weekend bool
	Today   bool
}

// MonthBand is a run of contiguous days in one month.
type MonthBand struct {
	Label string
	Days  int
}

// Width is the band's horizontal size.
func (m MonthBand) Width() int {
	return m.Days * DayWidth
}

// Layout is the computed timeline: the view window, its header rows,
// one bar per dated task, and the today-marker offset (-1 when today
// falls outside the window). Recomputed from scratch whenever the task
// collection changes; never persisted.
type Layout struct {
	WindowStart models.Date
	WindowEnd   models.Date
	Days        []DayCell
	Months      []MonthBand
	Bars        []Bar
	TodayOffset int
}

// Empty reports whether no task had a date to place.
func (l Layout) Empty() bool {
	return len(l.Bars) == 0
}

// ceilDays is the day distance from one instant to another, rounded up.
// The ceiling matters at day boundaries: an end earlier in the day than
// the start still counts a full day. Negative spans round toward zero
// days per ceiling semantics.
func ceilDays(from, to time.Time) int {
	ms := to.Sub(from).Milliseconds()
	if ms >= 0 {
		return int((ms + dayMillis - 1) / dayMillis)
	}
	return -int(-ms / dayMillis)
}

// Timeline lays out every dated task in tasks on a day grid. Tasks with
// neither a start nor a due date are excluded. The window fits the data
// with a week of padding on both ends, or defaults to a month from
// today when nothing is dated.
func Timeline(tasks []models.Task, today time.Time) Layout {
	var dated []models.Task
	for _, t := range tasks {
		if t.Dated() {
			dated = append(dated, t)
		}
	}

	todayDate := models.NewDate(today)
	start, end := window(dated, todayDate)

	l := Layout{
		WindowStart: start,
		WindowEnd:   end,
		TodayOffset: -1,
	}

	for d := start; !d.After(end.Time); d = d.AddDays(1) {
		wd := d.Weekday()
		l.Days = append(l.Days, DayCell{
			Date:    d,
			Weekend: wd == time.Saturday || wd == time.Sunday,
			Today:   d.Equal(todayDate.Time),
		})
		if n := len(l.Months); n > 0 && l.Months[n-1].Label == monthLabel(d) {
			l.Months[n-1].Days++
		} else {
			l.Months = append(l.Months, MonthBand{Label: monthLabel(d), Days: 1})
		}
	}

	if !todayDate.Before(start.Time) && !todayDate.After(end.Time) {
		l.TodayOffset = ceilDays(start.Time, todayDate.Time) * DayWidth
	}

	for _, t := range dated {
		effStart, effEnd := effectiveRange(t, start, end)
		duration := ceilDays(effStart.Time, effEnd.Time)
		if duration < 1 {
			duration = 1
		}
		offset := ceilDays(start.Time, effStart.Time)
		if offset < 0 {
			offset = 0
		}
		l.Bars = append(l.Bars, Bar{
			Task:   t,
			Offset: offset * DayWidth,
			Width:  duration * DayWidth,
		})
	}

	return l
}

func window(dated []models.Task, today models.Date) (models.Date, models.Date) {
	if len(dated) == 0 {
		return today, today.AddDays(defaultWindowDays)
	}

	var minDate, maxDate models.Date
	seen := false
	observe := func(d *models.Date) {
		if d == nil {
			return
		}
		if !seen || d.Before(minDate.Time) {
			minDate = *d
		}
		if !seen || d.After(maxDate.Time) {
			maxDate = *d
		}
		seen = true
	}
	for _, t := range dated {
		observe(t.StartDate)
		observe(t.DueDate)
	}

	return minDate.AddDays(-windowPadDays), maxDate.AddDays(windowPadDays)
}

// effectiveRange resolves a task's bar span: start falls back to due
// then to the window start, end falls back to start then to the window
// end.
func effectiveRange(t models.Task, windowStart, windowEnd models.Date) (models.Date, models.Date) {
	start := windowStart
	switch {
	case t.StartDate != nil:
		start = *t.StartDate
	case t.DueDate != nil:
		start = *t.DueDate
	}

	end := windowEnd
	switch {
	case t.DueDate != nil:
		end = *t.DueDate
	case t.StartDate != nil:
		end = *t.StartDate
	}

	return start, end
}

func monthLabel(d models.Date) string {
	return d.Format("January 2006")
}
