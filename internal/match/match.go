// Package match locates every row belonging to one reservation across the
// independently maintained source tables.
package match

import (
	"errors"
	"strings"

	"tourdesk/internal/alias"
	"tourdesk/pkg/models"
)

// ErrNoMatch means the search key matched zero rows in zero sources.
var ErrNoMatch = errors.New("no matching reservation")

// Key fields recognized for direct search, in scan order. Display name
// falls back through the Korean and English name alias groups.
var keyFields = []alias.Field{
	alias.FieldOrderID,
	alias.FieldEmail,
	alias.FieldKoreanName,
	alias.FieldEnglishName,
}

type Matcher struct {
	aliases *alias.Resolver
}

func New(aliases *alias.Resolver) *Matcher {
	return &Matcher{aliases: aliases}
}

// Find returns every row relevant to query. Two phases: an exact key-field
// scan collects the initial set, then the set is expanded to every row
// across every source sharing the discovered order identifier. A search by
// name or email may hit only one service's row; expansion is what makes the
// confirmation document complete.
func (m *Matcher) Find(tables []*models.Table, query string) ([]models.MatchedRow, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, ErrNoMatch
	}

	set := newRowSet()
	m.scanKeys(tables, q, set)
	if set.Len() == 0 {
		return nil, ErrNoMatch
	}

	// A numeric-looking query may itself be the identifier even when no
	// matched row carries it as an explicit field.
	id := m.orderID(set.Rows())
	if id == "" {
		id = q
	}

	m.scanIdentifier(tables, id, set)
	return set.Rows(), nil
}

// Keys lists every value found in a recognized key field across all
// sources, deduplicated in scan order. The UI uses this for autocomplete.
func (m *Matcher) Keys(tables []*models.Table) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range tables {
		cols := m.keyColumns(t.Headers)
		for _, row := range t.Rows {
			for _, col := range cols {
				v := cellAt(row, col)
				if v == "" {
					continue
				}
				if _, dup := seen[v]; dup {
					continue
				}
				seen[v] = struct{}{}
				out = append(out, v)
			}
		}
	}
	return out
}

func (m *Matcher) scanKeys(tables []*models.Table, q string, set *rowSet) {
	for ti, t := range tables {
		cols := m.keyColumns(t.Headers)
		if len(cols) == 0 {
			continue
		}
		for ri, row := range t.Rows {
			for _, col := range cols {
				if cellAt(row, col) == q {
					set.Add(ti, ri, matched(t, row))
					break
				}
			}
		}
	}
}

func (m *Matcher) scanIdentifier(tables []*models.Table, id string, set *rowSet) {
	for ti, t := range tables {
		col, ok := m.aliases.Resolve(alias.FieldOrderID, t.Headers)
		if !ok {
			continue
		}
		for ri, row := range t.Rows {
			if cellAt(row, col) == id {
				set.Add(ti, ri, matched(t, row))
			}
		}
	}
}

// orderID extracts the first available identifier from the initial match
// set, preferring the customer-master source.
func (m *Matcher) orderID(rows []models.MatchedRow) string {
	for _, pass := range []bool{true, false} {
		for _, r := range rows {
			if (r.Service == models.ServiceCustomers) != pass {
				continue
			}
			if v := m.aliases.Cell(r, alias.FieldOrderID); v != "" {
				return v
			}
		}
	}
	return ""
}

func (m *Matcher) keyColumns(headers []string) []int {
	var cols []int
	seen := make(map[int]struct{})
	for _, f := range keyFields {
		if i, ok := m.aliases.Resolve(f, headers); ok {
			if _, dup := seen[i]; !dup {
				seen[i] = struct{}{}
				cols = append(cols, i)
			}
		}
	}
	return cols
}

func matched(t *models.Table, row []string) models.MatchedRow {
	return models.MatchedRow{Service: t.Service, Headers: t.Headers, Cells: row}
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// rowSet keeps matched rows deduplicated by table and row position while
// preserving first-seen order, so expansion yields a superset of the
// initial scan.
type rowSet struct {
	seen map[[2]int]struct{}
	rows []models.MatchedRow
}

func newRowSet() *rowSet {
	return &rowSet{seen: make(map[[2]int]struct{})}
}

func (s *rowSet) Add(table, row int, r models.MatchedRow) {
	key := [2]int{table, row}
	if _, dup := s.seen[key]; dup {
		return
	}
	s.seen[key] = struct{}{}
	s.rows = append(s.rows, r)
}

func (s *rowSet) Len() int { return len(s.rows) }

func (s *rowSet) Rows() []models.MatchedRow { return s.rows }
