// Package closures reads the office closure calendar, a yearly JSON file
// listing the days the whole office is shut.
package closures

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// CalendarJSON is the file layout.
//
//	{"year": 2024, "months": [{"month": 5, "days": "25,26*", "reason": "Diwali"}]}
type CalendarJSON struct {
	Year   int          `json:"year"`
	Months []MonthEntry `json:"months"`
}

type MonthEntry struct {
	Month  int    `json:"month"`
	Days   string `json:"days"`
	Reason string `json:"reason"`
}

// Closure is one closed day.
type Closure struct {
	Date   time.Time `json:"date"`
	Reason string    `json:"reason"`
}

// DefaultReason is used when a month entry has no reason.
const DefaultReason = "Holiday"

// ParseFile reads and parses a closures file.
func ParseFile(filePath string) ([]Closure, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read closures file: %w", err)
	}
	return Parse(data)
}

// Parse turns the JSON calendar into closed days in file order. Day tokens
// may carry a trailing "+" or "*" marker, which is ignored.
func Parse(data []byte) ([]Closure, error) {
	var calendar CalendarJSON
	if err := json.Unmarshal(data, &calendar); err != nil {
		return nil, fmt.Errorf("failed to unmarshal closures: %w", err)
	}
	if calendar.Year == 0 {
		return nil, fmt.Errorf("closures file has no year")
	}

	closures := []Closure{}
	for _, entry := range calendar.Months {
		if entry.Month < 1 || entry.Month > 12 {
			return nil, fmt.Errorf("invalid month %d", entry.Month)
		}

		reason := strings.TrimSpace(entry.Reason)
		if reason == "" {
			reason = DefaultReason
		}

		for _, dayStr := range strings.Split(entry.Days, ",") {
			dayStr = strings.TrimSpace(dayStr)
			dayStr = strings.TrimSuffix(dayStr, "+")
			dayStr = strings.TrimSuffix(dayStr, "*")

			if dayStr == "" {
				continue
			}

			day, err := strconv.Atoi(dayStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse day '%s' in month %d: %w",
					dayStr, entry.Month, err)
			}

			date := time.Date(calendar.Year, time.Month(entry.Month), day, 0, 0, 0, 0, time.UTC)
			if date.Month() != time.Month(entry.Month) {
				return nil, fmt.Errorf("day %d does not exist in month %d", day, entry.Month)
			}

			closures = append(closures, Closure{Date: date, Reason: reason})
		}
	}

	return closures, nil
}

// Span returns the first and last closed day, or zero times for an empty list.
func Span(closures []Closure) (time.Time, time.Time) {
	if len(closures) == 0 {
		return time.Time{}, time.Time{}
	}
	first, last := closures[0].Date, closures[0].Date
	for _, c := range closures[1:] {
		if c.Date.Before(first) {
			first = c.Date
		}
		if c.Date.After(last) {
			last = c.Date
		}
	}
	return first, last
}
