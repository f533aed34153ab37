package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"tourdesk/pkg/models"
)

// WorkbookLoader reads all sources from one xlsx workbook, one sheet per
// service tag. Staff export the spreadsheets this way for offline work, so
// the CLI can reconcile without the gateway.
type WorkbookLoader struct {
	tables map[models.Service]*models.Table
}

// OpenWorkbook parses the workbook up front; sheets whose names are not a
// known service tag are ignored.
func OpenWorkbook(path string) (*WorkbookLoader, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	loader := &WorkbookLoader{tables: make(map[models.Service]*models.Table)}

	for _, sheet := range f.GetSheetList() {
		svc, ok := models.ParseService(sheet)
		if !ok {
			continue
		}

		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}

		t := &models.Table{Service: svc}
		if len(rows) > 0 {
			t.Headers = trimRow(rows[0])
			for _, r := range rows[1:] {
				if rowEmpty(r) {
					continue
				}
				t.Rows = append(t.Rows, trimRow(r))
			}
		}
		loader.tables[svc] = t
	}

	if len(loader.tables) == 0 {
		return nil, fmt.Errorf("workbook %s has no recognized sheets", path)
	}
	return loader, nil
}

func (w *WorkbookLoader) Services() []models.Service {
	out := make([]models.Service, 0, len(w.tables))
	for _, svc := range models.AllServices() {
		if _, ok := w.tables[svc]; ok {
			out = append(out, svc)
		}
	}
	return out
}

func (w *WorkbookLoader) Load(_ context.Context, svc models.Service) (*models.Table, error) {
	t, ok := w.tables[svc]
	if !ok {
		return nil, fmt.Errorf("workbook has no sheet for %s", svc)
	}
	return t, nil
}

// Tables returns every parsed table, for bulk import into the snapshot store.
func (w *WorkbookLoader) Tables() []*models.Table {
	out := make([]*models.Table, 0, len(w.tables))
	for _, svc := range models.AllServices() {
		if t, ok := w.tables[svc]; ok {
			out = append(out, t)
		}
	}
	return out
}

func trimRow(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

func rowEmpty(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
