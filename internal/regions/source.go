package regions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"status-aggregator/internal/models"
)

// Source supplies the region table. Implementations return an error when the
// table is absent or unreadable; the Resolver turns that into an empty table.
type Source interface {
	RegionTable(ctx context.Context) (models.RegionTable, error)
}

// EnvSource reads the table from a serialized JSON object such as the REGIONS
// environment variable: {"fra1": {"id": "fra1", "location": "Frankfurt"}, ...}.
type EnvSource struct {
	raw string
}

// NewEnvSource creates a source over the given JSON document.
func NewEnvSource(raw string) *EnvSource {
	return &EnvSource{raw: raw}
}

func (s *EnvSource) RegionTable(_ context.Context) (models.RegionTable, error) {
	return ParseTable([]byte(s.raw))
}

// ParseTable decodes a JSON region table. Blank input is an empty table.
func ParseTable(data []byte) (models.RegionTable, error) {
	if strings.TrimSpace(string(data)) == "" {
		return models.RegionTable{}, nil
	}
	var table models.RegionTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("unmarshal region table: %w", err)
	}
	if table == nil {
		table = models.RegionTable{}
	}
	return table, nil
}
