// Package resolver finds the source URL of the report published for a date.
//
// Two strategies exist because the sites name their pages differently:
// TemplateResolver renders known URL templates and probes them, and
// PaginationResolver walks a paginated listing searching for links that
// mention the date.
package resolver

import (
	"errors"
	"time"

	"github.com/pfrederiksen/parole-stats/internal/scraper"
)

// ErrURLNotFound is returned when no source URL exists for a date
var ErrURLNotFound = errors.New("report URL not found")

// DatePlaceholder is replaced by the formatted date in URL templates
const DatePlaceholder = "{date}"

// Prober checks whether a URL exists
type Prober interface {
	HeadExists(url string) bool
}

// Client fetches pages and probes URLs
type Client interface {
	Prober
	Fetch(url string) (*scraper.Response, error)
}

// Resolver returns the candidate URLs for a report date, best match first
type Resolver interface {
	Resolve(date time.Time) ([]string, error)
}
