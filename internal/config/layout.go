package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/laguna-water-quality/internal/domain"
)

// LoadLayout reads a secondary-format column layout from a YAML file. An
// empty path selects the built-in Q4 2024 export layout. Fields absent from
// the file keep their built-in values.
//
//	period_key: LagunaLakeStations_Q4_2024
//	base_key: LagunaLakeStations_Q1_2024
//	header_lines: 2
//	alignment: station
//	key_column: 0
//	columns:
//	  - {metric: BOD_mgL, start: 1}
func LoadLayout(path string) (domain.ColumnLayout, error) {
	layout := domain.DefaultLayout()
	if path == "" {
		return layout, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ColumnLayout{}, fmt.Errorf("read layout: %w", err)
	}
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return domain.ColumnLayout{}, fmt.Errorf("parse layout %s: %w", path, err)
	}
	if err := layout.Validate(); err != nil {
		return domain.ColumnLayout{}, fmt.Errorf("invalid LAYOUT_PATH %s: %w", path, err)
	}
	return layout, nil
}
