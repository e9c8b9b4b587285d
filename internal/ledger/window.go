package ledger

import (
	"fmt"
	"time"
)

// Window selects how far back a leaderboard query reaches.
type Window int

const (
	WindowAllTime Window = iota
	WindowDay
	WindowWeek
	WindowMonth
	WindowYear
)

func (w Window) String() string {
	switch w {
	case WindowAllTime:
		return "all-time"
	case WindowDay:
		return "day"
	case WindowWeek:
		return "week"
	case WindowMonth:
		return "month"
	case WindowYear:
		return "year"
	default:
		return "unknown"
	}
}

// ParseWindow maps a query argument onto a Window.
func ParseWindow(s string) (Window, error) {
	switch s {
	case "", "all", "all-time", "alltime", "overall":
		return WindowAllTime, nil
	case "day", "daily":
		return WindowDay, nil
	case "week", "weekly":
		return WindowWeek, nil
	case "month", "monthly":
		return WindowMonth, nil
	case "year", "yearly":
		return WindowYear, nil
	default:
		return WindowAllTime, fmt.Errorf("unknown leaderboard window %q", s)
	}
}

// Start returns the cutoff timestamp for the window relative to now. The
// zero time means no cutoff (all-time).
func (w Window) Start(now time.Time) time.Time {
	switch w {
	case WindowDay:
		return now.AddDate(0, 0, -1)
	case WindowWeek:
		return now.AddDate(0, 0, -7)
	case WindowMonth:
		return now.AddDate(0, -1, 0)
	case WindowYear:
		return now.AddDate(-1, 0, 0)
	default:
		return time.Time{}
	}
}
