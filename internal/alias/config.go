package alias

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"tourdesk/pkg/models"
)

// fileConfig is the YAML shape for alias overrides:
//
//	aliases:
//	  orderId:
//	    - "Booking No"
//	columns:
//	  cruise:
//	    totalPrice: 7
type fileConfig struct {
	Aliases map[string][]string       `yaml:"aliases"`
	Columns map[string]map[string]int `yaml:"columns"`
}

// LoadYAML layers alias spellings and pinned columns from a YAML file onto
// the resolver. Unknown canonical field names are rejected so typos in the
// config fail loudly instead of silently never matching.
func (r *Resolver) LoadYAML(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read alias config: %w", err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return fmt.Errorf("parse alias config: %w", err)
	}

	for name, spellings := range cfg.Aliases {
		field, ok := KnownField(name)
		if !ok {
			return fmt.Errorf("alias config: unknown field %q", name)
		}
		for _, s := range spellings {
			if Normalize(s) == "" {
				continue
			}
			r.extra[field] = append(r.extra[field], s)
		}
	}

	for tag, cols := range cfg.Columns {
		svc, ok := models.ParseService(tag)
		if !ok {
			return fmt.Errorf("alias config: unknown source %q", tag)
		}
		for name, idx := range cols {
			field, ok := KnownField(name)
			if !ok {
				return fmt.Errorf("alias config: unknown field %q", name)
			}
			if idx < 0 {
				return fmt.Errorf("alias config: negative column for %s.%s", tag, name)
			}
			r.pin(svc, field, idx)
		}
	}
	return nil
}

// LoadOverridesCSV reads the legacy column-rename format carried over from
// the old back office: one `sourceTag,columnIndex,canonicalName` line per
// pinned column. Blank lines and lines starting with # are skipped.
func (r *Resolver) LoadOverridesCSV(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open overrides: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("read overrides: %w", err)
	}

	for n, rec := range records {
		if len(rec) == 0 || strings.HasPrefix(strings.TrimSpace(rec[0]), "#") {
			continue
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if len(rec) != 3 {
			return fmt.Errorf("overrides line %d: want 3 fields, got %d", n+1, len(rec))
		}

		svc, ok := models.ParseService(rec[0])
		if !ok {
			return fmt.Errorf("overrides line %d: unknown source %q", n+1, rec[0])
		}
		idx, err := strconv.Atoi(strings.TrimSpace(rec[1]))
		if err != nil || idx < 0 {
			return fmt.Errorf("overrides line %d: bad column index %q", n+1, rec[1])
		}
		field, ok := KnownField(strings.TrimSpace(rec[2]))
		if !ok {
			return fmt.Errorf("overrides line %d: unknown field %q", n+1, rec[2])
		}
		r.pin(svc, field, idx)
	}
	return nil
}

func (r *Resolver) pin(svc models.Service, field Field, idx int) {
	if r.pinned[svc] == nil {
		r.pinned[svc] = make(map[Field]int)
	}
	r.pinned[svc][field] = idx
}
