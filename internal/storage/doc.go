// Package storage persists report records as CSV files in a date-partitioned tree.
//
// Each report date gets its own directory under the data directory:
//
//	{data-dir}/2023-05-05/2023-05-05-SocialMediaDailyReport.csv
//	{data-dir}/2023-05-05/2023-05-05-SocialMediaDailyReportDetail.csv
//
// The directory names are the only resume state: LatestDate scans them to find
// where the previous run stopped.
package storage
