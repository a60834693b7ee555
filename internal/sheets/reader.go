// Package sheets reads whole worksheets from Google Sheets into header-keyed
// tables.
package sheets

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/andresuchdata/ppic-monitor/internal/domain"
)

type Reader struct {
	srv           *sheets.Service
	spreadsheetID string
}

func NewReader(ctx context.Context, credentialsJSON, spreadsheetID string) (*Reader, error) {
	if credentialsJSON == "" || spreadsheetID == "" {
		return nil, fmt.Errorf("sheets credentials or spreadsheet id not configured: %w", domain.ErrNotReady)
	}

	config, err := google.JWTConfigFromJSON([]byte(credentialsJSON), sheets.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets client: %w", err)
	}

	return &Reader{srv: srv, spreadsheetID: spreadsheetID}, nil
}

func (r *Reader) SpreadsheetID() string {
	return r.spreadsheetID
}

// ReadTable fetches every value of a worksheet.
func (r *Reader) ReadTable(ctx context.Context, sheet string) (domain.Table, error) {
	resp, err := r.srv.Spreadsheets.Values.Get(r.spreadsheetID, sheet).Context(ctx).Do()
	if err != nil {
		return domain.Table{}, fmt.Errorf("read worksheet %q: %w", sheet, err)
	}
	return CleanTable(resp.Values), nil
}

// CleanTable turns raw worksheet values into a table. Headers are trimmed and
// uppercased, columns with an empty header are dropped, and empty cells are
// left out of the row maps.
func CleanTable(values [][]interface{}) domain.Table {
	if len(values) == 0 {
		return domain.Table{}
	}

	type col struct {
		idx  int
		name string
	}
	var cols []col
	for i, v := range values[0] {
		name := strings.ToUpper(strings.TrimSpace(fmt.Sprint(v)))
		if name == "" {
			continue
		}
		cols = append(cols, col{idx: i, name: name})
	}

	table := domain.Table{Header: make([]string, 0, len(cols))}
	for _, c := range cols {
		table.Header = append(table.Header, c.name)
	}

	for _, raw := range values[1:] {
		row := make(map[string]string, len(cols))
		for _, c := range cols {
			if c.idx >= len(raw) || raw[c.idx] == nil {
				continue
			}
			if cell := strings.TrimSpace(fmt.Sprint(raw[c.idx])); cell != "" {
				row[c.name] = cell
			}
		}
		if len(row) == 0 {
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}
