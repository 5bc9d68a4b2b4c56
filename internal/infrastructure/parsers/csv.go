package parsers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ersonp/lore-index/internal/domain/entities"
)

// CSVParser parses the flat CSV entity export. Expected columns: id, type,
// description, facts (JSON array of {statement, source}), related_entities
// and keywords (semicolon-separated).
type CSVParser struct{}

// Parse reads CSV from the reader and returns parsed entities.
func (p *CSVParser) Parse(r io.Reader) ([]entities.Entity, error) {
	reader := csv.NewReader(r)

	colIndex, err := p.readHeader(reader)
	if err != nil {
		return nil, err
	}

	return p.readRecords(reader, colIndex)
}

// readHeader reads and validates the CSV header row.
func (p *CSVParser) readHeader(reader *csv.Reader) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.TrimSpace(col)] = i
	}

	for _, col := range []string{"id", "type"} {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	return colIndex, nil
}

// readRecords reads all data rows and converts them to entities.
func (p *CSVParser) readRecords(reader *csv.Reader, colIndex map[string]int) ([]entities.Entity, error) {
	var ents []entities.Entity
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		entity, err := p.parseRecord(record, colIndex, lineNum)
		if err != nil {
			return nil, err
		}
		ents = append(ents, entity)
	}

	return ents, nil
}

// parseRecord converts a CSV record to an entity.
func (p *CSVParser) parseRecord(record []string, colIndex map[string]int, lineNum int) (entities.Entity, error) {
	raw := RawEntity{
		Type:            getColumn(record, colIndex, "type"),
		Description:     getColumn(record, colIndex, "description"),
		RelatedEntities: splitList(getColumn(record, colIndex, "related_entities")),
		Keywords:        splitList(getColumn(record, colIndex, "keywords")),
	}

	if factsJSON := getColumn(record, colIndex, "facts"); factsJSON != "" {
		if err := json.Unmarshal([]byte(factsJSON), &raw.Facts); err != nil {
			return entities.Entity{}, fmt.Errorf("line %d: invalid facts value: %w", lineNum, err)
		}
	}

	return toEntity(getColumn(record, colIndex, "id"), raw), nil
}

// splitList splits a semicolon-separated cell into its entries.
func splitList(cell string) []string {
	if cell == "" {
		return nil
	}
	var entries []string
	for _, entry := range strings.Split(cell, ";") {
		if entry = strings.TrimSpace(entry); entry != "" {
			entries = append(entries, entry)
		}
	}
	return entries
}

// getColumn safely retrieves a column value from a record.
func getColumn(record []string, colIndex map[string]int, col string) string {
	if idx, ok := colIndex[col]; ok && idx < len(record) {
		return record[idx]
	}
	return ""
}
