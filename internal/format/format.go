// Package format renders result rows for terminal and file output.
package format

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"athenaq/internal/domain"
)

// Name identifies an output format accepted by the CLI.
type Name string

// Supported output formats.
const (
	TSV   Name = "tsv"
	Table Name = "table"
	JSON  Name = "json"
)

// Parse validates a format name.
func Parse(s string) (Name, error) {
	switch n := Name(strings.ToLower(strings.TrimSpace(s))); n {
	case TSV, Table, JSON:
		return n, nil
	case "":
		return TSV, nil
	default:
		return "", fmt.Errorf("unsupported output format %q: use 'tsv', 'table' or 'json'", s)
	}
}

// Write renders rows in the named format. For Table and JSON the first row
// is taken as the column names.
func Write(w io.Writer, name Name, rows domain.ResultSet) error {
	switch name {
	case TSV, "":
		return WriteTSV(w, rows)
	case Table:
		return WriteTable(w, rows)
	case JSON:
		return WriteJSON(w, rows)
	default:
		return fmt.Errorf("unsupported output format %q", name)
	}
}

// tsvEscaper prefixes the delimiter, the escape character, the quote
// character and line breaks with a backslash. Nothing is quoted.
var tsvEscaper = strings.NewReplacer(
	`\`, `\\`,
	"\t", "\\\t",
	`"`, `\"`,
	"\n", "\\\n",
	"\r", "\\\r",
)

// WriteTSV writes one tab-separated, newline-terminated line per row.
func WriteTSV(w io.Writer, rows domain.ResultSet) error {
	bw := bufio.NewWriter(w)
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				if err := bw.WriteByte('\t'); err != nil {
					return err
				}
			}
			if _, err := tsvEscaper.WriteString(bw, cell); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteTable renders rows as an aligned table with the first row as header.
// An empty set writes nothing.
func WriteTable(w io.Writer, rows domain.ResultSet) error {
	if len(rows) == 0 {
		return nil
	}
	tw := tablewriter.NewWriter(w)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetHeader(rows.Header())
	for _, row := range rows.WithoutHeader() {
		tw.Append(row)
	}
	tw.Render()
	_, err := fmt.Fprintf(w, "(%d rows)\n", len(rows)-1)
	return err
}

type jsonResult struct {
	Columns  []string   `json:"columns"`
	Rows     [][]string `json:"rows"`
	RowCount int        `json:"row_count"`
}

// WriteJSON writes {"columns": [...], "rows": [[...]], "row_count": n}.
func WriteJSON(w io.Writer, rows domain.ResultSet) error {
	out := jsonResult{Columns: []string{}, Rows: [][]string{}}
	if len(rows) > 0 {
		out.Columns = rows.Header()
		for _, row := range rows.WithoutHeader() {
			out.Rows = append(out.Rows, row)
		}
	}
	out.RowCount = len(out.Rows)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
