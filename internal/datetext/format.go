package datetext

import (
	"fmt"
	"time"
)

// Style selects how a date is rendered into a URL fragment
type Style string

const (
	// StyleDe renders "{day}-de-{month}", e.g. "5-de-marzo"
	StyleDe Style = "de"
	// StylePlain renders "{day}-{month}", e.g. "5-marzo"
	StylePlain Style = "plain"
)

// monthNames are the full Spanish month names, lowercase and without diacritics.
var monthNames = [12]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// monthAbbr are the three-letter abbreviations matched by Parse.
var monthAbbr = [12]string{
	"ene", "feb", "mar", "abr", "may", "jun",
	"jul", "ago", "sep", "oct", "nov", "dic",
}

// MonthName returns the Spanish name of a month
func MonthName(m time.Month) string {
	return monthNames[m-1]
}

// Format renders a date as a URL fragment in the given style.
// Unknown styles fall back to StyleDe.
func Format(date time.Time, style Style) string {
	if style == StylePlain {
		return fmt.Sprintf("%d-%s", date.Day(), MonthName(date.Month()))
	}
	return fmt.Sprintf("%d-de-%s", date.Day(), MonthName(date.Month()))
}

// Variants returns the fragments for every style, StyleDe first.
// Site copy is inconsistent, so link searches try all of them.
func Variants(date time.Time) []string {
	return []string{Format(date, StyleDe), Format(date, StylePlain)}
}

// ValidStyle reports whether s names a known style
func ValidStyle(s Style) bool {
	return s == StyleDe || s == StylePlain
}
