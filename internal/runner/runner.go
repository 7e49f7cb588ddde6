// Package runner drives the report pipeline across a range of dates.
//
// For each date the runner resolves the source URLs, fetches them until one
// holds a statistics table, classifies the table rows and saves the report.
// Dates are processed strictly in order and the first failure stops the range,
// so the stored reports never have a gap.
package runner

import (
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/parole-stats/internal/logger"
	"github.com/pfrederiksen/parole-stats/internal/report"
	"github.com/pfrederiksen/parole-stats/internal/resolver"
	"github.com/pfrederiksen/parole-stats/internal/scraper"
)

// Fetcher fetches report pages
type Fetcher interface {
	Fetch(url string) (*scraper.Response, error)
}

// Store persists reports
type Store interface {
	SaveReport(r *report.Report) error
}

// Runner downloads reports for dates
type Runner struct {
	resolver   resolver.Resolver
	fetcher    Fetcher
	extractor  report.Extractor
	classifier *report.Classifier
	store      Store
}

// New creates a Runner using the default classification rules
func New(res resolver.Resolver, fetcher Fetcher, extractor report.Extractor, store Store) *Runner {
	return &Runner{
		resolver:   res,
		fetcher:    fetcher,
		extractor:  extractor,
		classifier: report.NewClassifier(),
		store:      store,
	}
}

// DownloadRange downloads every date in [start, end) and stops at the first failure
func (r *Runner) DownloadRange(start, end time.Time) error {
	dates := DateRange(start, end)
	logger.Info("downloading reports", logger.Fields{
		"start": start.Format(report.DateLayout),
		"end":   end.Format(report.DateLayout),
		"dates": len(dates),
	})

	for _, date := range dates {
		if err := r.Download(date); err != nil {
			logger.IncrCounter("reports.failed")
			return err
		}
	}

	return nil
}

// Download runs the pipeline for one report date. Nothing is written unless
// every row of the table was classified.
func (r *Runner) Download(date time.Time) error {
	started := time.Now()
	day := date.Format(report.DateLayout)

	logger.Info("downloading report", logger.Fields{"report_date": day})

	urls, err := r.resolver.Resolve(date)
	if err != nil {
		return fmt.Errorf("report %s: %w", day, err)
	}

	table, url, err := r.findTable(urls)
	if err != nil {
		return fmt.Errorf("report %s: %w", day, err)
	}

	totals, err := r.classifier.Classify(report.Rows(table), date)
	if err != nil {
		return fmt.Errorf("report %s: %s: %w", day, url, err)
	}

	rep := report.Build(date, totals)
	if err := r.store.SaveReport(rep); err != nil {
		return fmt.Errorf("report %s: saving: %w", day, err)
	}

	logger.Info("report saved", logger.Fields{
		"report_date": day,
		"url":         url,
		"approved":    rep.Summary.TotalApproved,
		"details":     len(rep.Details),
	})
	logger.IncrCounter("reports.saved")
	logger.RecordTiming("report.download", time.Since(started))

	return nil
}

// findTable fetches candidates in order and returns the first statistics table found.
// A fetch failure on any candidate is fatal.
func (r *Runner) findTable(urls []string) (*goquery.Selection, string, error) {
	for _, url := range urls {
		resp, err := r.fetcher.Fetch(url)
		if err != nil {
			return nil, "", err
		}

		table, err := r.extractor.Find(resp.Body)
		if err == nil {
			return table, url, nil
		}
		if !errors.Is(err, report.ErrTableNotFound) {
			return nil, "", fmt.Errorf("%s: %w", url, err)
		}

		logger.Debug("no statistics table", logger.Fields{"url": url})
	}

	return nil, "", fmt.Errorf("%w in %d candidate pages", report.ErrTableNotFound, len(urls))
}

// DateRange returns the dates from start up to but excluding end
func DateRange(start, end time.Time) []time.Time {
	dates := make([]time.Time, 0)
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// StartDate returns the day after the latest stored report, or initial when
// nothing is stored yet
func StartDate(latest time.Time, ok bool, initial time.Time) time.Time {
	if !ok {
		return initial
	}
	return latest.AddDate(0, 0, 1)
}

// Today returns the calendar date of now at midnight UTC
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
