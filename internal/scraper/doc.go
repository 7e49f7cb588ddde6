// Package scraper provides the HTTP client used to reach the parole statistics sites.
//
// The client fetches report and listing pages with a fixed User-Agent and timeout
// and probes whether a URL exists with a HEAD request. It does not retry: any
// failure is reported to the caller, which decides whether the run can continue.
package scraper
