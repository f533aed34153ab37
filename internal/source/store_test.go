package source

import (
	"context"
	"path/filepath"
	"testing"

	"tourdesk/pkg/database"
	"tourdesk/pkg/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewStore(db)
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	in := &models.Table{
		Service: models.ServiceCruise,
		Headers: []string{"주문번호", "크루즈명", "금액"},
		Rows: [][]string{
			{"ORD1", "Spectrum", "1,500,000"},
			{"ORD2", "Quantum", "2,000,000"},
		},
	}
	if err := s.Save(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := s.Load(ctx, models.ServiceCruise)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out.Headers) != 3 || out.Headers[1] != "크루즈명" {
		t.Fatalf("headers = %v", out.Headers)
	}
	if len(out.Rows) != 2 || out.Rows[1][1] != "Quantum" {
		t.Fatalf("rows = %v", out.Rows)
	}
}

func TestStore_SaveReplacesSnapshot(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	first := &models.Table{
		Service: models.ServiceHotel,
		Headers: []string{"호텔명"},
		Rows:    [][]string{{"Grand Hotel"}},
	}
	if err := s.Save(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}

	second := &models.Table{
		Service: models.ServiceHotel,
		Headers: []string{"호텔명", "객실수"},
		Rows:    [][]string{{"Harbor Inn", "2"}},
	}
	if err := s.Save(ctx, second); err != nil {
		t.Fatalf("save again: %v", err)
	}

	out, err := s.Load(ctx, models.ServiceHotel)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out.Rows) != 1 || out.Rows[0][0] != "Harbor Inn" {
		t.Fatalf("rows = %v, want latest snapshot only", out.Rows)
	}
}

func TestStore_LoadMissingSnapshot(t *testing.T) {
	s := testStore(t)
	if _, err := s.Load(context.Background(), models.ServiceTour); err == nil {
		t.Fatal("want error for absent snapshot")
	}
}

func TestStore_Stored(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, svc := range []models.Service{models.ServiceTour, models.ServiceCruise} {
		if err := s.Save(ctx, &models.Table{Service: svc, Headers: []string{"a"}, Rows: nil}); err != nil {
			t.Fatalf("save %s: %v", svc, err)
		}
	}

	stored, err := s.Stored(ctx)
	if err != nil {
		t.Fatalf("stored: %v", err)
	}
	// alphabetical by tag
	if len(stored) != 2 || stored[0] != models.ServiceCruise || stored[1] != models.ServiceTour {
		t.Fatalf("stored = %v", stored)
	}
}
