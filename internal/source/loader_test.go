package source

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"tourdesk/pkg/models"
)

// fakeLoader serves canned tables with a per-service artificial delay so the
// tests can force out-of-order completion.
type fakeLoader struct {
	tables map[models.Service]*models.Table
	errs   map[models.Service]error
	delays map[models.Service]time.Duration
	calls  atomic.Int32
}

func (f *fakeLoader) Load(_ context.Context, svc models.Service) (*models.Table, error) {
	f.calls.Add(1)
	if d := f.delays[svc]; d > 0 {
		time.Sleep(d)
	}
	if err := f.errs[svc]; err != nil {
		return nil, err
	}
	return f.tables[svc], nil
}

func (f *fakeLoader) Services() []models.Service { return models.AllServices() }

func table(svc models.Service) *models.Table {
	return &models.Table{
		Service: svc,
		Headers: []string{"주문번호"},
		Rows:    [][]string{{"ORD1"}},
	}
}

func TestFetchAll_DeclaredOrderRegardlessOfCompletion(t *testing.T) {
	f := &fakeLoader{
		tables: make(map[models.Service]*models.Table),
		delays: make(map[models.Service]time.Duration),
	}
	services := f.Services()
	for i, svc := range services {
		f.tables[svc] = table(svc)
		// earlier services finish last
		f.delays[svc] = time.Duration(len(services)-i) * 5 * time.Millisecond
	}

	res := FetchAll(context.Background(), f)
	if len(res.Tables) != len(services) {
		t.Fatalf("got %d tables, want %d", len(res.Tables), len(services))
	}
	for i, svc := range services {
		if res.Tables[i].Service != svc {
			t.Fatalf("slot %d = %s, want %s", i, res.Tables[i].Service, svc)
		}
	}
	if int(f.calls.Load()) != len(services) {
		t.Fatalf("got %d loads, want one per service", f.calls.Load())
	}
}

func TestFetchAll_FailedSourceYieldsEmptyTableAndError(t *testing.T) {
	boom := errors.New("gateway timeout")
	f := &fakeLoader{
		tables: make(map[models.Service]*models.Table),
		errs:   map[models.Service]error{models.ServiceHotel: boom},
	}
	for _, svc := range f.Services() {
		f.tables[svc] = table(svc)
	}

	res := FetchAll(context.Background(), f)

	if !errors.Is(res.Errors[models.ServiceHotel], boom) {
		t.Fatalf("hotel error = %v", res.Errors[models.ServiceHotel])
	}
	if len(res.Errors) != 1 {
		t.Fatalf("got %d errors, want 1", len(res.Errors))
	}

	// the failed slot still holds a table so downstream indexes line up
	var hotel *models.Table
	for _, tb := range res.Tables {
		if tb.Service == models.ServiceHotel {
			hotel = tb
		}
	}
	if hotel == nil {
		t.Fatal("failed source missing from table set")
	}
	if len(hotel.Rows) != 0 {
		t.Fatalf("failed source has %d rows, want empty", len(hotel.Rows))
	}
}

func TestErrorStrings(t *testing.T) {
	res := &Result{Errors: map[models.Service]error{
		models.ServiceHotel:  errors.New("h down"),
		models.ServiceCruise: errors.New("c down"),
	}}
	out := res.ErrorStrings()
	if out[models.ServiceHotel] != "h down" || out[models.ServiceCruise] != "c down" {
		t.Fatalf("got %v", out)
	}

	if (&Result{}).ErrorStrings() != nil {
		t.Fatal("empty errors must flatten to nil")
	}
}
