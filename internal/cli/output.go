package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pfrederiksen/parole-stats/internal/config"
	"github.com/pfrederiksen/parole-stats/internal/report"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// ResolveResult is the output of the resolve command
type ResolveResult struct {
	ReportDate string   `json:"report_date"`
	URLs       []string `json:"urls"`
}

// SourceInfo is one entry of the sources command output
type SourceInfo struct {
	Name        string `json:"name"`
	Default     bool   `json:"default"`
	Strategy    string `json:"strategy"`
	Table       string `json:"table"`
	DataDir     string `json:"data_dir"`
	InitialDate string `json:"initial_date"`
	Description string `json:"description,omitempty"`
}

// WriteURLs writes the candidate URLs of a report date
func WriteURLs(w io.Writer, date time.Time, urls []string, format OutputFormat) error {
	result := &ResolveResult{ReportDate: date.Format(report.DateLayout), URLs: urls}

	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		for _, u := range urls {
			fmt.Fprintln(w, u)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteSources writes the sources of a registry
func WriteSources(w io.Writer, reg *config.Registry, format OutputFormat) error {
	defaultName := reg.Default
	if defaultName == "" && len(reg.Sources) > 0 {
		defaultName = reg.Sources[0].Name
	}

	infos := make([]SourceInfo, 0, len(reg.Sources))
	for _, src := range reg.Sources {
		infos = append(infos, SourceInfo{
			Name:        src.Name,
			Default:     src.Name == defaultName,
			Strategy:    src.Strategy,
			Table:       src.Table,
			DataDir:     src.DataDir,
			InitialDate: src.InitialDate,
			Description: src.Description,
		})
	}

	switch format {
	case FormatJSON:
		return writeJSON(w, infos)
	case FormatText:
		return writeSourcesText(w, infos)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeSourcesText(w io.Writer, infos []SourceInfo) error {
	for _, info := range infos {
		marker := " "
		if info.Default {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s (%s, %s table) since %s -> %s\n",
			marker, info.Name, info.Strategy, info.Table, info.InitialDate, info.DataDir)
		if info.Description != "" {
			fmt.Fprintf(w, "    %s\n", strings.TrimSpace(info.Description))
		}
	}
	return nil
}

// writeJSON outputs v as indented JSON
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
