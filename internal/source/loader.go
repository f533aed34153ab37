// Package source is the I/O boundary toward the external tabular stores.
// Loaders hand the engine complete tables or explicit errors; the
// reconciliation pipeline itself never does I/O.
package source

import (
	"context"
	"sort"
	"sync"

	"tourdesk/pkg/models"
)

// Loader fetches one source table. Implementations: the scripting gateway
// client, the local sqlite snapshot store, an xlsx workbook and BigQuery.
type Loader interface {
	Load(ctx context.Context, svc models.Service) (*models.Table, error)
	Services() []models.Service
}

// Result is the outcome of one fan-out fetch. A source that failed to load
// is represented by an empty table plus its error, so reconciliation can
// proceed on the sources that did load.
type Result struct {
	Tables []*models.Table
	Errors map[models.Service]error
}

// FetchAll loads every source concurrently and blocks until all fetches
// resolve. Tables come back in the loader's declared service order, never
// arrival order, so downstream results do not depend on fetch timing.
func FetchAll(ctx context.Context, loader Loader) *Result {
	services := loader.Services()

	type slot struct {
		table *models.Table
		err   error
	}
	slots := make([]slot, len(services))

	var wg sync.WaitGroup
	for i, svc := range services {
		wg.Add(1)
		go func(i int, svc models.Service) {
			defer wg.Done()
			t, err := loader.Load(ctx, svc)
			if err != nil {
				slots[i] = slot{table: &models.Table{Service: svc}, err: err}
				return
			}
			slots[i] = slot{table: t}
		}(i, svc)
	}
	wg.Wait()

	res := &Result{
		Tables: make([]*models.Table, 0, len(services)),
		Errors: make(map[models.Service]error),
	}
	for i, s := range slots {
		res.Tables = append(res.Tables, s.table)
		if s.err != nil {
			res.Errors[services[i]] = s.err
		}
	}
	return res
}

// ErrorStrings flattens the per-source errors for embedding in a result
// payload, keyed deterministically.
func (r *Result) ErrorStrings() map[models.Service]string {
	if len(r.Errors) == 0 {
		return nil
	}
	out := make(map[models.Service]string, len(r.Errors))
	keys := make([]models.Service, 0, len(r.Errors))
	for svc := range r.Errors {
		keys = append(keys, svc)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, svc := range keys {
		out[svc] = r.Errors[svc].Error()
	}
	return out
}
