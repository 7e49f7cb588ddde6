package report

import (
	"strconv"
	"time"
)

// Country is the nationality every report describes
const Country = "Cuba"

// DateLayout is the layout of every date written to disk
const DateLayout = "2006-01-02"

var (
	SummaryHeader = []string{"Country", "ReportDate", "TotalApproved", "TotalApprovedUnknownDate", "TotalDenied"}
	DetailHeader  = []string{"CaseDate", "TotalApproved"}
)

// Summary is the single summary row of a report
type Summary struct {
	Country                  string
	ReportDate               time.Time
	TotalApproved            int
	TotalApprovedUnknownDate *int
	TotalDenied              *int
}

// Record returns the CSV fields of the summary. Missing totals are empty.
func (s Summary) Record() []string {
	return []string{
		s.Country,
		s.ReportDate.Format(DateLayout),
		strconv.Itoa(s.TotalApproved),
		optional(s.TotalApprovedUnknownDate),
		optional(s.TotalDenied),
	}
}

// Detail is the approved count for one case day
type Detail struct {
	CaseDate      time.Time
	TotalApproved int
}

// Record returns the CSV fields of the detail row
func (d Detail) Record() []string {
	return []string{d.CaseDate.Format(DateLayout), strconv.Itoa(d.TotalApproved)}
}

// Report is everything persisted for one report date
type Report struct {
	Date    time.Time
	Summary Summary
	Details []Detail
}

// Build assembles the summary and detail records of a report
func Build(reportDate time.Time, totals *Totals) *Report {
	approved := totals.Calculated
	if totals.Total != nil {
		approved = *totals.Total
	}

	details := make([]Detail, 0, len(totals.Cases))
	for _, c := range totals.Cases {
		details = append(details, Detail{CaseDate: c.Date, TotalApproved: c.Approved})
	}

	return &Report{
		Date: reportDate,
		Summary: Summary{
			Country:                  Country,
			ReportDate:               reportDate,
			TotalApproved:            approved,
			TotalApprovedUnknownDate: totals.UnknownDate,
			TotalDenied:              totals.Denied,
		},
		Details: details,
	}
}

// SummaryRows returns the summary as CSV rows
func (r *Report) SummaryRows() [][]string {
	return [][]string{r.Summary.Record()}
}

// DetailRows returns the details as CSV rows, in table order
func (r *Report) DetailRows() [][]string {
	rows := make([][]string, 0, len(r.Details))
	for _, d := range r.Details {
		rows = append(rows, d.Record())
	}
	return rows
}

func optional(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
