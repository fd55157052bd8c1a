package remotestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/handyapp/gateway/internal/core/domain/directory"
	"github.com/handyapp/gateway/internal/core/ports"
)

// PostgresStore is the remote store backed by the kv_entries and
// service_entries tables.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Put(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to put kv entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM kv_entries WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get kv entry: %w", err)
	}
	return value, true, nil
}

func (s *PostgresStore) PutService(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO service_entries (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to put service entry: %w", err)
	}
	return nil
}

type providerRow struct {
	ID     string         `db:"id"`
	Detail sql.NullString `db:"detail"`
}

func (s *PostgresStore) GetServiceProvider(ctx context.Context, serviceType, location string) ([]byte, bool, error) {
	query := `
		SELECT idx.value AS id, det.value AS detail
		FROM service_entries idx
		LEFT JOIN service_entries det ON det.key = idx.value
		WHERE idx.key = $1`

	var row providerRow
	err := s.db.GetContext(ctx, &row, query, serviceType)
	if errors.Is(err, sql.ErrNoRows) {
		return statusPayload(directory.StatusNoProvider, ""), true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query service provider: %w", err)
	}
	return matchProvider(row.ID, row.Detail, location), true, nil
}

// matchProvider applies the location filter to a resolved detail blob and
// returns the status-tagged document the directory expects. It follows the
// Redis script: a non-string location counts as none, and only ASCII letters
// are folded.
func matchProvider(id string, detail sql.NullString, location string) []byte {
	if !detail.Valid {
		return statusPayload(directory.StatusDetailAbsent, id)
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(detail.String), &rec); err != nil || rec == nil {
		return statusPayload(directory.StatusUnreadable, id)
	}
	if location != "" {
		got, _ := rec["location"].(string)
		if asciiLower(got) != asciiLower(location) {
			return statusPayload(directory.StatusNoMatch, id)
		}
	}
	rec["status"] = directory.StatusFound
	b, err := json.Marshal(rec)
	if err != nil {
		return statusPayload(directory.StatusUnreadable, id)
	}
	return b
}

// asciiLower lowercases A-Z only, like Lua's string.lower.
func asciiLower(s string) string {
	return strings.Map(func(r rune) rune {
		if 'A' <= r && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}

func statusPayload(status int, id string) []byte {
	p := map[string]any{"status": status}
	if id != "" {
		p["id"] = id
	}
	b, _ := json.Marshal(p)
	return b
}

var _ ports.RemoteStore = (*PostgresStore)(nil)
