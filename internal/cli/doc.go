// Package cli implements the command-line interface for parole-stats.
//
// The root command downloads every report between the day after the latest
// stored report and yesterday. The resolve, latest and sources subcommands
// help an operator inspect what a run would do when a site changes format.
package cli
