package runner

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/pfrederiksen/parole-stats/internal/datetext"
	"github.com/pfrederiksen/parole-stats/internal/report"
	"github.com/pfrederiksen/parole-stats/internal/resolver"
	"github.com/pfrederiksen/parole-stats/internal/scraper"
	"github.com/pfrederiksen/parole-stats/internal/storage"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// fakeSite serves report pages keyed by URL and records every fetch
type fakeSite struct {
	pages   map[string]string
	fail    map[string]bool
	fetched []string
}

func (f *fakeSite) Fetch(url string) (*scraper.Response, error) {
	f.fetched = append(f.fetched, url)
	if f.fail[url] {
		return nil, fmt.Errorf("%w: %s: unexpected status code: 500", scraper.ErrFetchFailed, url)
	}
	body, ok := f.pages[url]
	if !ok {
		return nil, fmt.Errorf("%w: %s: unexpected status code: 404", scraper.ErrFetchFailed, url)
	}
	return &scraper.Response{StatusCode: 200, Body: body}, nil
}

func (f *fakeSite) HeadExists(url string) bool {
	_, ok := f.pages[url]
	return ok
}

// mapResolver resolves every date to the URLs listed for it
type mapResolver map[string][]string

func (m mapResolver) Resolve(d time.Time) ([]string, error) {
	urls, ok := m[d.Format(report.DateLayout)]
	if !ok {
		return nil, resolver.ErrURLNotFound
	}
	return urls, nil
}

func reportURL(d time.Time) string {
	return "https://n.test/" + datetext.Format(d, datetext.StyleDe) + "/"
}

func reportHTML(d time.Time) string {
	prev := d.AddDate(0, 0, -1)
	return fmt.Sprintf(`<html><body>
		<table><tr><td>Menú</td></tr></table>
		<table>
			<tr><th>Cuba</th><th>Aprobados</th></tr>
			<tr><td>Se desconoce</td><td>4</td></tr>
			<tr><td>Denegados</td><td>2</td></tr>
			<tr><td>%d-%s</td><td>%d</td></tr>
		</table>
	</body></html>`, prev.Day(), datetext.MonthName(prev.Month())[:3], d.Day())
}

func newSite(dates []time.Time) (*fakeSite, mapResolver) {
	site := &fakeSite{pages: map[string]string{}, fail: map[string]bool{}}
	res := mapResolver{}
	for _, d := range dates {
		site.pages[reportURL(d)] = reportHTML(d)
		res[d.Format(report.DateLayout)] = []string{reportURL(d)}
	}
	return site, res
}

func TestDownload(t *testing.T) {
	d := date(2023, time.May, 5)
	site, res := newSite([]time.Time{d})
	store, _ := storage.New(t.TempDir())

	r := New(res, site, report.HeaderContains{Text: "cuba"}, store)
	if err := r.Download(d); err != nil {
		t.Fatalf("Download() error: %v", err)
	}

	summary, err := os.ReadFile(store.SummaryPath(d))
	if err != nil {
		t.Fatalf("reading summary: %v", err)
	}
	wantSummary := "Country,ReportDate,TotalApproved,TotalApprovedUnknownDate,TotalDenied\nCuba,2023-05-05,9,4,2\n"
	if string(summary) != wantSummary {
		t.Errorf("summary = %q, want %q", summary, wantSummary)
	}

	detail, err := os.ReadFile(store.DetailPath(d))
	if err != nil {
		t.Fatalf("reading detail: %v", err)
	}
	wantDetail := "CaseDate,TotalApproved\n2023-05-04,5\n"
	if string(detail) != wantDetail {
		t.Errorf("detail = %q, want %q", detail, wantDetail)
	}
}

func TestDownload_CandidateFallback(t *testing.T) {
	d := date(2023, time.May, 5)
	site := &fakeSite{pages: map[string]string{
		"https://n.test/a/": `<table><tr><td>Noticias</td><td>1</td></tr></table>`,
		"https://n.test/b/": reportHTML(d),
		"https://n.test/c/": reportHTML(d),
	}}
	res := mapResolver{"2023-05-05": {"https://n.test/a/", "https://n.test/b/", "https://n.test/c/"}}
	store, _ := storage.New(t.TempDir())

	if err := New(res, site, report.HeaderContains{Text: "cuba"}, store).Download(d); err != nil {
		t.Fatalf("Download() error: %v", err)
	}

	want := []string{"https://n.test/a/", "https://n.test/b/"}
	if !reflect.DeepEqual(site.fetched, want) {
		t.Errorf("fetched = %v, want %v", site.fetched, want)
	}
}

func TestDownload_Errors(t *testing.T) {
	d := date(2023, time.May, 5)

	tests := []struct {
		name    string
		pages   map[string]string
		fail    map[string]bool
		urls    []string
		wantErr error
	}{
		{
			name:    "url not found",
			wantErr: resolver.ErrURLNotFound,
		},
		{
			name:    "fetch failed",
			urls:    []string{"https://n.test/x/"},
			fail:    map[string]bool{"https://n.test/x/": true},
			wantErr: scraper.ErrFetchFailed,
		},
		{
			name: "no candidate has a table",
			pages: map[string]string{
				"https://n.test/a/": `<p>nada</p>`,
				"https://n.test/b/": `<table><tr><td>Venezuela</td></tr></table>`,
			},
			urls:    []string{"https://n.test/a/", "https://n.test/b/"},
			wantErr: report.ErrTableNotFound,
		},
		{
			name: "bad case date",
			pages: map[string]string{
				"https://n.test/a/": `<table><tr><th>Cuba</th></tr><tr><td>ayer</td><td>3</td></tr></table>`,
			},
			urls:    []string{"https://n.test/a/"},
			wantErr: report.ErrInvalidCaseDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site := &fakeSite{pages: tt.pages, fail: tt.fail}
			res := mapResolver{}
			if tt.urls != nil {
				res["2023-05-05"] = tt.urls
			}
			root := t.TempDir()
			store, _ := storage.New(root)

			err := New(res, site, report.HeaderContains{Text: "cuba"}, store).Download(d)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Download() error = %v, want %v", err, tt.wantErr)
			}

			if _, ok, _ := storage.LatestDate(root); ok {
				t.Error("report directory written for a failed date")
			}
		})
	}
}

func TestDownloadRange_StopsAtFirstFailure(t *testing.T) {
	start := date(2023, time.May, 1)
	end := date(2023, time.May, 6)
	dates := DateRange(start, end)

	site, res := newSite(dates)
	site.fail[reportURL(dates[2])] = true

	root := t.TempDir()
	store, _ := storage.New(root)

	err := New(res, site, report.HeaderContains{Text: "cuba"}, store).DownloadRange(start, end)
	if !errors.Is(err, scraper.ErrFetchFailed) {
		t.Fatalf("DownloadRange() error = %v, want ErrFetchFailed", err)
	}

	if len(site.fetched) != 3 {
		t.Errorf("fetched %d pages, want 3: %v", len(site.fetched), site.fetched)
	}

	latest, ok, _ := storage.LatestDate(root)
	if !ok || !latest.Equal(dates[1]) {
		t.Errorf("LatestDate() = %v, %v, want %v", latest, ok, dates[1])
	}
	for _, d := range dates[2:] {
		if _, err := os.Stat(filepath.Join(root, d.Format(report.DateLayout))); !os.IsNotExist(err) {
			t.Errorf("report for %s exists after failure", d.Format(report.DateLayout))
		}
	}
}

func TestDownloadRange_Idempotent(t *testing.T) {
	start := date(2023, time.May, 1)
	end := date(2023, time.May, 4)
	dates := DateRange(start, end)
	site, res := newSite(dates)

	rootA := t.TempDir()
	rootB := t.TempDir()
	for _, root := range []string{rootA, rootB} {
		store, _ := storage.New(root)
		if err := New(res, site, report.HeaderContains{Text: "cuba"}, store).DownloadRange(start, end); err != nil {
			t.Fatalf("DownloadRange() error: %v", err)
		}
	}

	storeA, _ := storage.New(rootA)
	storeB, _ := storage.New(rootB)
	for _, d := range dates {
		for _, paths := range [][2]string{
			{storeA.SummaryPath(d), storeB.SummaryPath(d)},
			{storeA.DetailPath(d), storeB.DetailPath(d)},
		} {
			a, errA := os.ReadFile(paths[0])
			b, errB := os.ReadFile(paths[1])
			if errA != nil || errB != nil {
				t.Fatalf("reading outputs: %v, %v", errA, errB)
			}
			if !bytes.Equal(a, b) {
				t.Errorf("%s differs between runs", filepath.Base(paths[0]))
			}
		}
	}
}

func TestDownload_WithTemplateResolver(t *testing.T) {
	d := date(2023, time.March, 5)
	site := &fakeSite{pages: map[string]string{
		"https://b/5-de-marzo/": `<table><tr><td>TOTAL</td><td>11</td></tr><tr><td>4-mar</td><td>11</td></tr></table>`,
	}}
	res := resolver.NewTemplateResolver([]string{"https://a/{date}/", "https://b/{date}/"}, datetext.StyleDe, site)
	store, _ := storage.New(t.TempDir())

	if err := New(res, site, report.FirstTable{}, store).Download(d); err != nil {
		t.Fatalf("Download() error: %v", err)
	}

	summary, _ := os.ReadFile(store.SummaryPath(d))
	if want := "Country,ReportDate,TotalApproved,TotalApprovedUnknownDate,TotalDenied\nCuba,2023-03-05,11,,\n"; string(summary) != want {
		t.Errorf("summary = %q, want %q", summary, want)
	}
}

func TestDateRange(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"five days", date(2023, time.May, 1), date(2023, time.May, 6), 5},
		{"empty when equal", date(2023, time.May, 1), date(2023, time.May, 1), 0},
		{"empty when reversed", date(2023, time.May, 2), date(2023, time.May, 1), 0},
		{"across month end", date(2023, time.February, 27), date(2023, time.March, 2), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DateRange(tt.start, tt.end)
			if len(got) != tt.want {
				t.Fatalf("DateRange() returned %d dates, want %d", len(got), tt.want)
			}
			if tt.want > 0 && !got[0].Equal(tt.start) {
				t.Errorf("first date = %v, want %v", got[0], tt.start)
			}
		})
	}
}

func TestStartDate(t *testing.T) {
	initial := date(2023, time.May, 5)

	if got := StartDate(time.Time{}, false, initial); !got.Equal(initial) {
		t.Errorf("StartDate() with nothing stored = %v, want %v", got, initial)
	}
	if got := StartDate(date(2023, time.June, 30), true, initial); !got.Equal(date(2023, time.July, 1)) {
		t.Errorf("StartDate() = %v, want 2023-07-01", got)
	}
}

func TestResumeFromStorage(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "2023-05-09"), 0755); err != nil {
		t.Fatal(err)
	}

	latest, ok, err := storage.LatestDate(root)
	if err != nil {
		t.Fatalf("LatestDate() error: %v", err)
	}

	if got := StartDate(latest, ok, date(2023, time.May, 5)); !got.Equal(date(2023, time.May, 10)) {
		t.Errorf("StartDate() = %v, want 2023-05-10", got)
	}
}

func TestToday(t *testing.T) {
	now := time.Date(2023, time.May, 5, 23, 59, 0, 0, time.FixedZone("EDT", -4*3600))
	if got := Today(now); !got.Equal(date(2023, time.May, 5)) {
		t.Errorf("Today() = %v, want 2023-05-05", got)
	}
}
