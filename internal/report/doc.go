// Package report turns a fetched statistics page into report records.
//
// The pages are written by hand, so everything here is heuristic. An Extractor
// locates the statistics table, Rows pulls (label, value) pairs out of it, a
// Classifier sorts each pair into a grand total, an unknown-date total, a denied
// total, a skipped row or a per-day approved count, and Build assembles the
// summary and detail records that are persisted for the report date.
package report
