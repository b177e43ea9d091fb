package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/leaflens/leaflens/internal/models"
	"github.com/leaflens/leaflens/internal/plantinfo"
)

// SQLiteRepository keeps a local copy of a user's history entries so past
// identifications stay readable while the backend is unreachable.
type SQLiteRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewSQLiteRepository creates a repository over the provided *sql.DB.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{DB: db}
}

// Replace swaps the cached entries for userID with the given set inside a
// transaction, so a partial write never leaves a mixed snapshot.
func (r *SQLiteRepository) Replace(ctx context.Context, userID string, entries []models.HistoryEntry) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear cached entries: %w", err)
	}

	for _, e := range entries {
		info, err := json.Marshal(e.Info)
		if err != nil {
			return fmt.Errorf("marshal info: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO entries (id, user_id, plant_name, confidence, image_url, timestamp, info, tts)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, e.ID, userID, e.PlantName, e.Confidence, e.ImageURL, e.Timestamp, info, e.TTS)
		if err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}
	}

	return tx.Commit()
}

// ListByUser fetches the cached entries for userID, newest first.
func (r *SQLiteRepository) ListByUser(ctx context.Context, userID string) ([]models.HistoryEntry, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, plant_name, confidence, image_url, timestamp, info, tts
		  FROM entries WHERE user_id = ? ORDER BY timestamp DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("ListByUser: %w", err)
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var (
			e    models.HistoryEntry
			info []byte
		)
		if err := rows.Scan(&e.ID, &e.PlantName, &e.Confidence, &e.ImageURL, &e.Timestamp, &info, &e.TTS); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		e.UserID = userID
		if len(info) > 0 {
			var m plantinfo.InfoMap
			if err := json.Unmarshal(info, &m); err != nil {
				return nil, fmt.Errorf("unmarshal info: %w", err)
			}
			e.Info = m
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes one cached entry.
func (r *SQLiteRepository) Delete(ctx context.Context, userID, entryID string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM entries WHERE user_id = ? AND id = ?`, userID, entryID); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

// Clear removes all cached entries for userID.
func (r *SQLiteRepository) Clear(ctx context.Context, userID string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM entries WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	return nil
}
