// Package render prints command results as colored tables, JSON or YAML.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown output format %q: must be table, json or yaml", s)
	}
}

// Table is one titled grid of cells.
type Table struct {
	Title  string
	Header []string
	Rows   [][]string
	// Note is printed under the table, e.g. to flag an empty selection.
	Note string
}

type Printer struct {
	w      io.Writer
	format Format
	title  *color.Color
	note   *color.Color
}

func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{
		w:      w,
		format: format,
		title:  color.New(color.FgYellow, color.Bold),
		note:   color.New(color.FgCyan),
	}
}

// Print writes v as JSON or YAML, or the tables in table format.
func (p *Printer) Print(v interface{}, tables ...Table) error {
	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		for _, t := range tables {
			p.table(t)
		}
		return nil
	}
}

func (p *Printer) table(t Table) {
	if t.Title != "" {
		p.title.Fprintf(p.w, "\n%s\n", t.Title)
	}

	table := tablewriter.NewWriter(p.w)
	table.SetHeader(t.Header)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, row := range t.Rows {
		table.Append(row)
	}
	table.Render()

	if t.Note != "" {
		p.note.Fprintln(p.w, t.Note)
	}
}

// Success prints a one-line confirmation in table mode only.
func (p *Printer) Success(format string, args ...interface{}) {
	if p.format != FormatTable {
		return
	}
	color.New(color.FgGreen).Fprintf(p.w, format+"\n", args...)
}

// Float formats v with two decimals; NaN and infinities print as "-".
func Float(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func Percent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}
