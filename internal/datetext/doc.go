// Package datetext renders and parses the Spanish date fragments used by the
// parole statistics sites.
//
// Format turns a calendar date into the slug fragments that appear in report
// URLs ("5-de-marzo", "5-marzo"). Parse goes the other way for the free-form
// day labels found in report tables ("5,mar 23", "5-mar", "5 mar 2024"),
// which are typed by hand and drift in format from month to month.
package datetext
