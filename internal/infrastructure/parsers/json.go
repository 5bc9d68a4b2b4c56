package parsers

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/ersonp/lore-index/internal/domain/entities"
)

// JSONParser parses the extraction pipeline's JSON corpus: a mapping from
// entity id to entity record.
type JSONParser struct{}

// Parse reads the id-to-record mapping and returns entities sorted by id
// so imports are deterministic regardless of map iteration order.
func (p *JSONParser) Parse(r io.Reader) ([]entities.Entity, error) {
	var records map[string]RawEntity

	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&records); err != nil {
		return nil, fmt.Errorf("parsing JSON corpus: %w", err)
	}

	ents := make([]entities.Entity, 0, len(records))
	for id, raw := range records {
		ents = append(ents, toEntity(id, raw))
	}

	sort.Slice(ents, func(i, j int) bool { return ents[i].ID < ents[j].ID })
	return ents, nil
}
