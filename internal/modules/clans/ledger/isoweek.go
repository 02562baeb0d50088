package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// WeekISO formats t's ISO-8601 week in UTC as YYYY-Www.
func WeekISO(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

type Week struct {
	ISO    string
	Number int
	Start  time.Time
	End    time.Time
}

// ParseWeek resolves YYYY-Www to its Monday 00:00 through Sunday 23:59:59.999
// bounds in UTC.
func ParseWeek(weekIso string) (Week, error) {
	yearStr, weekStr, ok := strings.Cut(strings.TrimSpace(weekIso), "-W")
	if !ok {
		return Week{}, fmt.Errorf("invalid week %q: want YYYY-Www", weekIso)
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil || len(yearStr) != 4 {
		return Week{}, fmt.Errorf("invalid week year %q", yearStr)
	}
	num, err := strconv.Atoi(weekStr)
	if err != nil || len(weekStr) != 2 || num < 1 || num > 53 {
		return Week{}, fmt.Errorf("invalid week number %q", weekStr)
	}
	// Jan 4th is always in week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	dow := int(jan4.Weekday())
	if dow == 0 {
		dow = 7
	}
	start := jan4.AddDate(0, 0, (num-1)*7-dow+1)
	if num == 53 && WeekISO(start) != fmt.Sprintf("%d-W53", year) {
		return Week{}, fmt.Errorf("year %d has no week 53", year)
	}
	return Week{
		ISO:    fmt.Sprintf("%d-W%02d", year, num),
		Number: num,
		Start:  start,
		End:    start.AddDate(0, 0, 7).Add(-time.Millisecond),
	}, nil
}

// WeekOf returns the week containing t.
func WeekOf(t time.Time) Week {
	w, _ := ParseWeek(WeekISO(t))
	return w
}

// CoveringRange widens [first, last] to whole ISO weeks.
func CoveringRange(first, last time.Time) (time.Time, time.Time) {
	return WeekOf(first).Start, WeekOf(last).End
}
