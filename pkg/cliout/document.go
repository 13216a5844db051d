package cliout

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fleetsync/fleetsync/pkg/fields"
)

// Format selects how a Document renders.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// ParseFormat maps a CLI -o value to a Format, defaulting to table for an
// empty string. An unrecognized value is an error so a caller can exit
// with the invalid-arguments status rather than silently falling back.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("cliout: unknown output format %q (want table or json)", s)
	}
}

// Document buffers rows keyed by a field registry's internal names, then
// renders them as either a Table (display names as headers, declared
// field order as columns) or as a JSON array of objects (display names as
// keys). This is the column-selection bridge SPEC_FULL.md's field
// registry section calls for: one buffered record set, two renderers.
type Document struct {
	reg  *fields.Registry
	rows []map[string]string
}

// NewDocument builds a Document whose columns are reg's enabled fields.
func NewDocument(reg *fields.Registry) *Document {
	return &Document{reg: reg}
}

// AddRow buffers one record. values is keyed by internal field name;
// fields the registry doesn't know about are ignored, and fields absent
// from values render as "".
func (d *Document) AddRow(values map[string]string) {
	d.rows = append(d.rows, values)
}

// Len returns the number of buffered rows.
func (d *Document) Len() int { return len(d.rows) }

// Render writes the buffered rows to w in the given format.
func (d *Document) Render(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		return d.renderJSON(w)
	case FormatTable, "":
		d.renderTable(w)
		return nil
	default:
		return fmt.Errorf("cliout: unknown output format %q", format)
	}
}

func (d *Document) renderTable(w io.Writer) {
	enabled := d.reg.Enabled()
	headers := make([]string, len(enabled))
	for i, f := range enabled {
		headers[i] = f.DisplayName
	}

	t := NewTable(w, headers...)
	for _, row := range d.rows {
		cells := make([]string, len(enabled))
		for i, f := range enabled {
			cells[i] = row[f.Internal]
		}
		t.Row(cells...)
	}
	t.Flush()
}

func (d *Document) renderJSON(w io.Writer) error {
	enabled := d.reg.Enabled()
	out := make([]map[string]string, len(d.rows))
	for i, row := range d.rows {
		obj := make(map[string]string, len(enabled))
		for _, f := range enabled {
			obj[f.DisplayName] = row[f.Internal]
		}
		out[i] = obj
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
