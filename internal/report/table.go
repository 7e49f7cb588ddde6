package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrTableNotFound is returned when a page has no statistics table
var ErrTableNotFound = errors.New("statistics table not found")

// DefaultHeaderMatch is the header text that marks the statistics table on older pages
const DefaultHeaderMatch = "cuba"

// Extractor locates the statistics table in a page
type Extractor interface {
	Find(html string) (*goquery.Selection, error)
}

// FirstTable returns the first table of the page unconditionally
type FirstTable struct{}

// Find implements Extractor
func (FirstTable) Find(html string) (*goquery.Selection, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, ErrTableNotFound
	}
	return table, nil
}

// HeaderContains returns the first table whose first row mentions Text,
// compared case-insensitively
type HeaderContains struct {
	Text string
}

// Find implements Extractor
func (h HeaderContains) Find(html string) (*goquery.Selection, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	match := strings.ToLower(h.Text)
	if match == "" {
		match = DefaultHeaderMatch
	}

	var found *goquery.Selection
	doc.Find("table").EachWithBreak(func(i int, table *goquery.Selection) bool {
		header := table.Find("tr").First()
		if header.Length() == 0 {
			return true
		}
		if strings.Contains(strings.ToLower(header.Text()), match) {
			found = table
			return false
		}
		return true
	})

	if found == nil {
		return nil, fmt.Errorf("%w: no table header contains %q", ErrTableNotFound, match)
	}
	return found, nil
}

// Row is one (label, value) pair of the statistics table
type Row struct {
	Label string
	Value string
}

// Rows returns the first two data cells of every row of table, in document
// order. Rows with fewer than two data cells are left out.
func Rows(table *goquery.Selection) []Row {
	rows := make([]Row, 0)

	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() < 2 {
			return
		}
		rows = append(rows, Row{
			Label: strings.TrimSpace(cells.Eq(0).Text()),
			Value: strings.TrimSpace(cells.Eq(1).Text()),
		})
	})

	return rows
}
