package datetext

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// ErrInvalidDateText is returned when a date label cannot be parsed
var ErrInvalidDateText = errors.New("invalid date text")

// splitters are tried in order until one yields the expected fragment count
var splitters = []func(string) []string{
	func(s string) []string { return strings.Split(s, ",") },
	func(s string) []string { return strings.Split(s, "-") },
	strings.Fields,
}

// Parse parses a day label such as "5,mar 23", "5-mar" or "5 mar 2024" into a
// date at midnight UTC.
//
// Two fragments are read as day and month abbreviation, optionally followed by
// a year; fallbackYear is used when the year is absent. Three fragments are
// read as day, month and year. Two-digit years are taken to be in the 2000s.
func Parse(text string, fallbackYear int) (time.Time, error) {
	var three []string
	for _, split := range splitters {
		parts := split(text)
		switch len(parts) {
		case 2:
			return parseTwo(text, parts, fallbackYear)
		case 3:
			if three == nil {
				three = parts
			}
		}
	}

	if three != nil {
		return parseThree(text, three)
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateText, text)
}

func parseTwo(text string, parts []string, fallbackYear int) (time.Time, error) {
	day, err := parseDay(parts[0])
	if err != nil {
		return time.Time{}, invalid(text, err)
	}

	rest := strings.TrimSpace(parts[1])
	month, err := parseMonth(rest)
	if err != nil {
		return time.Time{}, invalid(text, err)
	}

	year := fallbackYear
	if suffix := yearSuffix(rest); suffix != "" {
		year, err = parseYear(suffix)
		if err != nil {
			return time.Time{}, invalid(text, err)
		}
	}

	return build(text, year, month, day)
}

func parseThree(text string, parts []string) (time.Time, error) {
	day, err := parseDay(parts[0])
	if err != nil {
		return time.Time{}, invalid(text, err)
	}

	month, err := parseMonth(strings.TrimSpace(parts[1]))
	if err != nil {
		return time.Time{}, invalid(text, err)
	}

	year, err := parseYear(strings.TrimSpace(parts[2]))
	if err != nil {
		return time.Time{}, invalid(text, err)
	}

	return build(text, year, month, day)
}

func parseDay(s string) (int, error) {
	day, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("day %q is not a number", s)
	}
	return day, nil
}

// parseMonth matches the first three letters of s against the abbreviation table
func parseMonth(s string) (time.Month, error) {
	if len(s) < 3 {
		return 0, fmt.Errorf("month %q too short", s)
	}

	abbr := strings.ToLower(s[:3])
	for i, a := range monthAbbr {
		if a == abbr {
			return time.Month(i + 1), nil
		}
	}

	return 0, fmt.Errorf("unknown month %q", abbr)
}

// yearSuffix returns whatever follows the month word in a fragment like
// "mar 23", "marzo" or "mar. 2024"
func yearSuffix(s string) string {
	rest := s[3:]
	rest = strings.TrimLeftFunc(rest, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsSpace(r) || r == '.' || r == '/' || r == '\''
	})
	return strings.TrimSpace(rest)
}

func parseYear(s string) (int, error) {
	year, err := strconv.Atoi(s)
	if err != nil || year < 0 {
		return 0, fmt.Errorf("year %q is not a number", s)
	}
	if year < 100 {
		year += 2000
	}
	return year, nil
}

func build(text string, year int, month time.Month, day int) (time.Time, error) {
	if day < 1 || day > daysIn(year, month) {
		return time.Time{}, fmt.Errorf("%w: %q: day %d out of range", ErrInvalidDateText, text, day)
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func invalid(text string, err error) error {
	return fmt.Errorf("%w: %q: %v", ErrInvalidDateText, text, err)
}
