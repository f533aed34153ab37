package match

import (
	"errors"
	"testing"

	"tourdesk/internal/alias"
	"tourdesk/pkg/models"
)

func fixtureTables() []*models.Table {
	return []*models.Table{
		{
			Service: models.ServiceCustomers,
			Headers: []string{"주문번호", "한글이름", "이메일"},
			Rows: [][]string{
				{"ORD1", "김철수", "kim@example.com"},
				{"ORD2", "이영희", "lee@example.com"},
			},
		},
		{
			Service: models.ServiceCruise,
			Headers: []string{"주문번호", "크루즈명", "객실등급"},
			Rows: [][]string{
				{"ORD1", "Spectrum", "Deluxe"},
				{"ORD1", "Spectrum", "Deluxe"},
				{"ORD2", "Quantum", "Suite"},
			},
		},
		{
			Service: models.ServiceHotel,
			Headers: []string{"예약번호", "호텔명"},
			Rows: [][]string{
				{"ORD1", "Grand Hotel"},
			},
		},
	}
}

func TestFind_ByOrderID(t *testing.T) {
	m := New(alias.NewResolver())

	rows, err := m.Find(fixtureTables(), "ORD1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// one customer row, two cruise rows, one hotel row
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(rows))
	}
}

func TestFind_ByEmailExpandsToAllServices(t *testing.T) {
	m := New(alias.NewResolver())

	// the email appears only on the customer master; expansion by the
	// discovered identifier must pull in cruise and hotel rows too
	rows, err := m.Find(fixtureTables(), "kim@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4 after expansion", len(rows))
	}

	services := map[models.Service]int{}
	for _, r := range rows {
		services[r.Service]++
	}
	if services[models.ServiceCruise] != 2 || services[models.ServiceHotel] != 1 {
		t.Fatalf("expansion incomplete: %v", services)
	}
}

func TestFind_ExpansionIsSuperset(t *testing.T) {
	m := New(alias.NewResolver())

	// direct name match hits only the customer row; that row must survive
	// expansion even though other rows are added
	rows, err := m.Find(fixtureTables(), "김철수")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	foundCustomer := false
	for _, r := range rows {
		if r.Service == models.ServiceCustomers {
			foundCustomer = true
		}
	}
	if !foundCustomer {
		t.Fatal("initial match lost during expansion")
	}
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(rows))
	}
}

func TestFind_NoMatch(t *testing.T) {
	m := New(alias.NewResolver())

	_, err := m.Find(fixtureTables(), "nobody@example.com")
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("got %v, want ErrNoMatch", err)
	}

	if _, err := m.Find(fixtureTables(), "   "); !errors.Is(err, ErrNoMatch) {
		t.Fatalf("blank query: got %v, want ErrNoMatch", err)
	}
}

func TestFind_QueryAsIdentifierFallback(t *testing.T) {
	// a source whose rows match the key directly but carry no order-id
	// column: the raw query doubles as the expansion identifier
	tables := []*models.Table{
		{
			Service: models.ServiceTour,
			Headers: []string{"이메일", "투어명"},
			Rows: [][]string{
				{"solo@example.com", "City Tour"},
			},
		},
		{
			Service: models.ServiceHotel,
			Headers: []string{"예약번호", "호텔명"},
			Rows: [][]string{
				{"solo@example.com", "Harbor Inn"}, // odd sheet keyed by email
			},
		},
	}

	m := New(alias.NewResolver())
	rows, err := m.Find(tables, "solo@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 via raw-query expansion", len(rows))
	}
}

func TestFind_DuplicateKeyColumnsNotDoubleCounted(t *testing.T) {
	tables := []*models.Table{
		{
			Service: models.ServiceCustomers,
			Headers: []string{"주문번호", "이메일"},
			Rows: [][]string{
				{"ORD9", "ORD9"}, // same value in two key columns
			},
		},
	}

	m := New(alias.NewResolver())
	rows, err := m.Find(tables, "ORD9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
}

func TestKeys(t *testing.T) {
	m := New(alias.NewResolver())
	keys := m.Keys(fixtureTables())

	want := map[string]bool{
		"ORD1": true, "ORD2": true,
		"김철수": true, "이영희": true,
		"kim@example.com": true, "lee@example.com": true,
	}
	got := map[string]bool{}
	for _, k := range keys {
		if got[k] {
			t.Fatalf("duplicate key %q", k)
		}
		got[k] = true
	}
	for k := range want {
		if !got[k] {
			t.Fatalf("missing key %q in %v", k, keys)
		}
	}
}
