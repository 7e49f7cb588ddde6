package resolver

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/parole-stats/internal/datetext"
	"github.com/pfrederiksen/parole-stats/internal/logger"
)

// PaginationResolver searches a paginated post listing for links mentioning a date
type PaginationResolver struct {
	baseURL string
	client  Client
}

// NewPaginationResolver creates a resolver over the listing at baseURL
func NewPaginationResolver(baseURL string, client Client) *PaginationResolver {
	return &PaginationResolver{
		baseURL: baseURL,
		client:  client,
	}
}

// PageURL returns the URL of listing page n. Page 1 is the base URL itself.
func PageURL(baseURL string, n int) string {
	if n <= 1 {
		return baseURL
	}
	return fmt.Sprintf("%s/page/%d/", strings.TrimSuffix(baseURL, "/"), n)
}

// Resolve walks the listing one page at a time and returns every matching link
// on the first page that has any. A page that does not exist ends the listing.
func (r *PaginationResolver) Resolve(date time.Time) ([]string, error) {
	variants := datetext.Variants(date)

	for page := 1; ; page++ {
		pageURL := PageURL(r.baseURL, page)

		logger.Debug("probing listing page", logger.Fields{"url": pageURL, "page": page})
		if !r.client.HeadExists(pageURL) {
			return nil, fmt.Errorf("%w: %s (listing exhausted at page %d)", ErrURLNotFound, date.Format("2006-01-02"), page)
		}

		resp, err := r.client.Fetch(pageURL)
		if err != nil {
			return nil, fmt.Errorf("fetching listing page %d: %w", page, err)
		}

		urls, err := findDateLinks(resp.Body, pageURL, variants)
		if err != nil {
			return nil, fmt.Errorf("parsing listing page %d: %w", page, err)
		}

		if len(urls) > 0 {
			return urls, nil
		}
	}
}

// findDateLinks returns the hrefs containing the first variant that matches any link.
// Relative links are resolved against pageURL. Duplicates are dropped.
func findDateLinks(html, pageURL string, variants []string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	base, _ := url.Parse(pageURL)
	links := doc.Find("a[href]")

	for _, variant := range variants {
		seen := make(map[string]bool)
		urls := make([]string, 0)

		links.Each(func(i int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			if !containsFragment(href, variant) {
				return
			}

			href = absolute(base, href)
			if !seen[href] {
				seen[href] = true
				urls = append(urls, href)
			}
		})

		if len(urls) > 0 {
			return urls, nil
		}
	}

	return nil, nil
}

// containsFragment reports whether fragment occurs in href without a digit
// directly before it, so "5-de-marzo" does not match "15-de-marzo".
func containsFragment(href, fragment string) bool {
	for offset := 0; ; {
		i := strings.Index(href[offset:], fragment)
		if i < 0 {
			return false
		}
		i += offset
		if i == 0 || !isDigit(href[i-1]) {
			return true
		}
		offset = i + 1
	}
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func absolute(base *url.URL, href string) string {
	if base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
