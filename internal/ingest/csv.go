// ABOUTME: CSV ingestion for support knowledge exports
// ABOUTME: Parses a header-keyed CSV file into one map per row

package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
)

// Row is one CSV record keyed by the header row.
type Row map[string]string

// ParseCSV reads a CSV file whose first record is the header and
// returns one map per remaining record. Short records leave the missing
// columns out.
func ParseCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening csv file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // tolerate ragged rows

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv file: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(Row, len(header))
		for i, key := range header {
			if i < len(record) {
				row[key] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
