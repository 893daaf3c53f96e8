package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/louisbranch/emberarena/internal/services/arena/domain/encounter"
	"github.com/louisbranch/emberarena/internal/services/arena/storage"
)

// PutEncounter upserts an encounter record. The filter columns are derived
// from the document so list queries never parse JSON.
func (s *Store) PutEncounter(ctx context.Context, enc encounter.Encounter) error {
	doc, err := json.Marshal(enc)
	if err != nil {
		return fmt.Errorf("marshal encounter: %w", err)
	}

	const query = `
INSERT INTO encounters (id, account_a, account_b, state, doc, created_at, updated_at)
VALUES (?1, ?2, ?3, ?4, ?5, ?6, ?7)
ON CONFLICT (id) DO UPDATE SET
    state = excluded.state,
    doc = excluded.doc,
    updated_at = excluded.updated_at;
`
	_, err = s.sqlDB.ExecContext(ctx, query,
		enc.ID,
		enc.A.AccountID,
		enc.B.AccountID,
		string(enc.State),
		string(doc),
		toMillis(enc.CreatedAt),
		toMillis(enc.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put encounter: %w", err)
	}
	return nil
}

// GetEncounter returns the encounter with the given ID.
func (s *Store) GetEncounter(ctx context.Context, id string) (encounter.Encounter, error) {
	const query = `SELECT doc FROM encounters WHERE id = ?1;`
	return s.scanEncounterRow(s.sqlDB.QueryRowContext(ctx, query, id), "get encounter")
}

// GetActiveEncounterByAccount returns the unresolved encounter the account
// participates in.
func (s *Store) GetActiveEncounterByAccount(ctx context.Context, accountID string) (encounter.Encounter, error) {
	const query = `
SELECT doc FROM encounters
WHERE state != ?1 AND (account_a = ?2 OR account_b = ?2)
ORDER BY created_at DESC
LIMIT 1;
`
	row := s.sqlDB.QueryRowContext(ctx, query, string(encounter.StateResolved), accountID)
	return s.scanEncounterRow(row, "get active encounter")
}

// ListEncountersByAccount returns the account's encounters, most recent
// first.
func (s *Store) ListEncountersByAccount(ctx context.Context, accountID string, limit int) ([]encounter.Encounter, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
SELECT doc FROM encounters
WHERE account_a = ?1 OR account_b = ?1
ORDER BY created_at DESC, id DESC
LIMIT ?2;
`
	rows, err := s.sqlDB.QueryContext(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("list encounters: %w", err)
	}
	defer rows.Close()

	var out []encounter.Encounter
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan encounter: %w", err)
		}
		var enc encounter.Encounter
		if err := json.Unmarshal([]byte(doc), &enc); err != nil {
			return nil, fmt.Errorf("unmarshal encounter: %w", err)
		}
		out = append(out, enc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate encounters: %w", err)
	}
	return out, nil
}

func (s *Store) scanEncounterRow(row *sql.Row, op string) (encounter.Encounter, error) {
	var doc string
	err := row.Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return encounter.Encounter{}, storage.ErrNotFound
	}
	if err != nil {
		return encounter.Encounter{}, fmt.Errorf("%s: %w", op, err)
	}

	var enc encounter.Encounter
	if err := json.Unmarshal([]byte(doc), &enc); err != nil {
		return encounter.Encounter{}, fmt.Errorf("%s: unmarshal: %w", op, err)
	}
	return enc, nil
}
