package handler

import (
	"fmt"
	"strings"
	"time"
)

const displayDateLayout = "02.01.2006"

// parseDate accepts dd.mm.yyyy, dd-mm-yyyy, yyyy-mm-dd and dd.mm (current
// year). The result is a UTC calendar day.
func parseDate(dateStr string, now time.Time) (time.Time, error) {
	formats := []string{
		"02.01.2006",
		"02-01-2006",
		"2006-01-02",
		"02.01",
		"02-01",
	}

	dateStr = strings.TrimSpace(dateStr)
	for _, format := range formats {
		t, err := time.Parse(format, dateStr)
		if err != nil {
			continue
		}
		year := t.Year()
		if !strings.Contains(format, "2006") {
			year = now.Year()
		}
		return time.Date(year, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}

	return time.Time{}, fmt.Errorf("invalid date %q, use dd.mm.yyyy or dd.mm", dateStr)
}

// dayLabel renders a date for buttons, e.g. "Mon 27 May".
func dayLabel(t time.Time) string {
	return t.Format("Mon 02 Jan")
}
