package source

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"tourdesk/pkg/models"
)

// Store keeps table snapshots in sqlite. It backs the local gateway stub and
// the CLI's offline mode; headers and rows are stored as JSON blobs, one row
// per source, latest snapshot wins.
type Store struct {
	DB *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) Services() []models.Service {
	return models.AllServices()
}

func (s *Store) Load(ctx context.Context, svc models.Service) (*models.Table, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT headers, rows
		FROM source_tables
		WHERE service = ?
	`, string(svc))

	var headersJSON, rowsJSON string
	if err := row.Scan(&headersJSON, &rowsJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no snapshot for source %s", svc)
		}
		return nil, fmt.Errorf("load snapshot %s: %w", svc, err)
	}

	t := &models.Table{Service: svc}
	if err := json.Unmarshal([]byte(headersJSON), &t.Headers); err != nil {
		return nil, fmt.Errorf("decode headers %s: %w", svc, err)
	}
	if err := json.Unmarshal([]byte(rowsJSON), &t.Rows); err != nil {
		return nil, fmt.Errorf("decode rows %s: %w", svc, err)
	}
	return t, nil
}

// Save replaces the stored snapshot for the table's source.
func (s *Store) Save(ctx context.Context, t *models.Table) error {
	headersJSON, err := json.Marshal(t.Headers)
	if err != nil {
		return fmt.Errorf("encode headers: %w", err)
	}
	rowsJSON, err := json.Marshal(t.Rows)
	if err != nil {
		return fmt.Errorf("encode rows: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO source_tables (service, headers, rows, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(service) DO UPDATE SET
			headers = excluded.headers,
			rows = excluded.rows,
			updated_at = excluded.updated_at
	`, string(t.Service), string(headersJSON), string(rowsJSON), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", t.Service, err)
	}
	return nil
}

// Stored lists the sources that currently have a snapshot.
func (s *Store) Stored(ctx context.Context) ([]models.Service, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT service FROM source_tables ORDER BY service`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []models.Service
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("scan snapshot tag: %w", err)
		}
		if svc, ok := models.ParseService(tag); ok {
			out = append(out, svc)
		}
	}
	return out, rows.Err()
}
