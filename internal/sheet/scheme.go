package sheet

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scheme maps semantic field names to the numeric column identifiers of one
// store instance. Schemes differ between sheets and are injected as
// configuration.
type Scheme struct {
	Name    string           `yaml:"name"`
	Columns map[string]int64 `yaml:"columns"`
}

// Column returns the column identifier for field.
func (s Scheme) Column(field string) (int64, bool) {
	col, ok := s.Columns[field]
	return col, ok
}

// Validate rejects schemes that map two fields onto the same column.
func (s Scheme) Validate() error {
	if len(s.Columns) == 0 {
		return fmt.Errorf("scheme %q has no columns", s.Name)
	}
	byColumn := make(map[int64][]string, len(s.Columns))
	for field, col := range s.Columns {
		byColumn[col] = append(byColumn[col], field)
	}
	var clashes []string
	for col, fields := range byColumn {
		if len(fields) > 1 {
			sort.Strings(fields)
			clashes = append(clashes, fmt.Sprintf("%d (%s)", col, strings.Join(fields, ", ")))
		}
	}
	if len(clashes) > 0 {
		sort.Strings(clashes)
		return fmt.Errorf("scheme %q reuses columns: %s", s.Name, strings.Join(clashes, "; "))
	}
	return nil
}

// ParseScheme decodes and validates a YAML scheme.
func ParseScheme(data []byte) (Scheme, error) {
	var s Scheme
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Scheme{}, fmt.Errorf("invalid scheme: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Scheme{}, err
	}
	return s, nil
}

// LoadScheme reads a YAML scheme file.
func LoadScheme(path string) (Scheme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scheme{}, fmt.Errorf("failed to read scheme: %w", err)
	}
	return ParseScheme(data)
}

// PositionalScheme assigns fields to consecutive zero-based column indexes,
// for stores that address cells by position.
func PositionalScheme(name string, fields []string) Scheme {
	cols := make(map[string]int64, len(fields))
	for i, f := range fields {
		cols[f] = int64(i)
	}
	return Scheme{Name: name, Columns: cols}
}
