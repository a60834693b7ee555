package dataset

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/ppic-monitor/internal/domain"
)

// LoadObservationsXLSX parses the first sheet of a workbook with the same
// column rules as the CSV loader.
func LoadObservationsXLSX(path string) ([]domain.MaterialObservation, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx file %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx file %s has no sheets", path)
	}
	sheet := sheets[0]

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	var (
		parser *observationParser
		out    []domain.MaterialObservation
		line   int
	)
	for rows.Next() {
		line++
		record, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read row from %s: %w", path, err)
		}
		if parser == nil {
			if parser, err = newObservationParser(record); err != nil {
				return nil, fmt.Errorf("xlsx %s: %w", path, err)
			}
			continue
		}
		if blank(record) {
			continue
		}
		obs, err := parser.parse(record)
		if err != nil {
			return nil, &RowError{Line: line, Err: err}
		}
		out = append(out, obs)
	}

	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("error iterating rows in %s: %w", path, err)
	}
	if parser == nil {
		return nil, fmt.Errorf("xlsx file %s has no header row", path)
	}
	return out, nil
}
