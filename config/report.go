package config

import (
	"fmt"
	"strings"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatXLSX    = "xlsx"
	FormatJSON    = "json"
	FormatCSV     = "csv"
	FormatHTML    = "html"
)

// ReportConfig selects where and how solved schedules are written.
type ReportConfig struct {
	// Output is the path of the written files without extension; each
	// format appends its own.
	Output  string   `json:"output"`
	Formats []string `json:"formats"`
}

// SetDefaults applies sane defaults.
func (c *ReportConfig) SetDefaults() {
	if c.Output == "" {
		c.Output = "schedule"
	}
	if len(c.Formats) == 0 {
		c.Formats = []string{FormatConsole, FormatXLSX}
	}
}

// Validate checks the formats are known.
func (c ReportConfig) Validate() error {
	for _, f := range c.Formats {
		switch f {
		case FormatConsole, FormatXLSX, FormatJSON, FormatCSV, FormatHTML:
		default:
			return fmt.Errorf("report: unknown format %s", f)
		}
	}
	return nil
}

// Wants reports whether format f is selected.
func (c ReportConfig) Wants(f string) bool {
	for _, g := range c.Formats {
		if g == f {
			return true
		}
	}
	return false
}

// Path returns the output file for format f.
func (c ReportConfig) Path(f string) string {
	return strings.TrimSuffix(c.Output, "."+f) + "." + f
}

// ParseFormats splits a comma separated format list.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}
