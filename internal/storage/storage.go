package storage

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pfrederiksen/parole-stats/internal/report"
)

const (
	SummaryName = "SocialMediaDailyReport"
	DetailName  = "SocialMediaDailyReportDetail"
)

// Storage handles persistence of report CSV files
type Storage struct {
	dataDir string
}

// New creates a new Storage instance rooted at dataDir.
// The directory is created on the first write.
func New(dataDir string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// DataDir returns the root of the report tree
func (s *Storage) DataDir() string {
	return s.dataDir
}

// reportPath returns the path of one of the CSV files of a report date
func (s *Storage) reportPath(date time.Time, name string) string {
	d := date.Format(report.DateLayout)
	return filepath.Join(s.dataDir, d, fmt.Sprintf("%s-%s.csv", d, name))
}

// SummaryPath returns the path of the summary CSV for a report date
func (s *Storage) SummaryPath(date time.Time) string {
	return s.reportPath(date, SummaryName)
}

// DetailPath returns the path of the detail CSV for a report date
func (s *Storage) DetailPath(date time.Time) string {
	return s.reportPath(date, DetailName)
}

// SaveReport writes the summary and detail files of a report, replacing any
// existing ones
func (s *Storage) SaveReport(r *report.Report) error {
	if err := WriteTable(report.SummaryHeader, r.SummaryRows(), s.SummaryPath(r.Date)); err != nil {
		return err
	}
	return WriteTable(report.DetailHeader, r.DetailRows(), s.DetailPath(r.Date))
}

// LatestDate returns the latest report date stored under the data directory
func (s *Storage) LatestDate() (time.Time, bool, error) {
	return LatestDate(s.dataDir)
}

// WriteTable writes a CSV file with a header row, creating parent directories
// as needed and overwriting any existing file
func WriteTable(header []string, rows [][]string, path string) error {
	data, err := encode(header, rows)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	return writeFile(path, data)
}

// LatestDate returns the greatest YYYY-MM-DD directory name under root.
// A missing root or one without report directories reports false.
func LatestDate(root string) (time.Time, bool, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("reading data directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := time.Parse(report.DateLayout, e.Name()); err == nil {
			names = append(names, e.Name())
		}
	}

	if len(names) == 0 {
		return time.Time{}, false, nil
	}

	sort.Strings(names)
	latest, _ := time.Parse(report.DateLayout, names[len(names)-1])
	return latest, true, nil
}

func encode(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}
