package query

import (
	"strings"
	"time"
)

// RelDate is a calendar-relative date keyword. It stays symbolic in the
// AST and resolves against "now" at evaluation time, not parse time.
type RelDate int

const (
	RelToday RelDate = iota
	RelYesterday
	RelTomorrow
	RelThisWeek
	RelLastWeek
	RelNextWeek
	RelThisMonth
	RelLastMonth
	RelNextMonth
)

var relDateNames = map[string]RelDate{
	"today":      RelToday,
	"yesterday":  RelYesterday,
	"tomorrow":   RelTomorrow,
	"this-week":  RelThisWeek,
	"last-week":  RelLastWeek,
	"next-week":  RelNextWeek,
	"this-month": RelThisMonth,
	"last-month": RelLastMonth,
	"next-month": RelNextMonth,
}

// ParseRelDate matches a relative-date keyword, case-insensitively.
func ParseRelDate(s string) (RelDate, bool) {
	r, ok := relDateNames[strings.ToLower(s)]
	return r, ok
}

func (r RelDate) String() string {
	for name, rd := range relDateNames {
		if rd == r {
			return name
		}
	}
	return "unknown"
}

// Resolve returns the start of the day the keyword denotes, in now's
// location. Weeks start on the most recent Monday; months on the first.
func (r RelDate) Resolve(now time.Time) time.Time {
	day := startOfDay(now)
	switch r {
	case RelToday:
		return day
	case RelYesterday:
		return day.AddDate(0, 0, -1)
	case RelTomorrow:
		return day.AddDate(0, 0, 1)
	case RelThisWeek:
		return startOfWeek(day)
	case RelLastWeek:
		return startOfWeek(day).AddDate(0, 0, -7)
	case RelNextWeek:
		return startOfWeek(day).AddDate(0, 0, 7)
	case RelThisMonth:
		return startOfMonth(day)
	case RelLastMonth:
		return startOfMonth(day).AddDate(0, -1, 0)
	case RelNextMonth:
		return startOfMonth(day).AddDate(0, 1, 0)
	default:
		return day
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func startOfWeek(day time.Time) time.Time {
	// time.Weekday counts Sunday as 0; shift so Monday is 0
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func startOfMonth(day time.Time) time.Time {
	y, m, _ := day.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, day.Location())
}
