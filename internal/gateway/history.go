package gateway

import (
	"context"

	"github.com/leaflens/leaflens/internal/models"
	"go.uber.org/zap"
)

// SaveHistory persists a full entry snapshot. The backend overwrites by id,
// so retrying with the same entry is idempotent.
func (c *Client) SaveHistory(ctx context.Context, sess models.Session, entry models.HistoryEntry) error {
	err := c.postJSON(ctx, "/save_history", map[string]any{
		"email":      sess.Email,
		"password":   sess.CredentialSecret,
		"plant_data": entry,
	}, nil)
	if err != nil {
		return err
	}
	c.log.Debug("history entry saved", zap.String("id", entry.ID), zap.String("plant", entry.PlantName))
	return nil
}

// ListHistory fetches every saved entry. The server's ordering is not
// trusted; callers re-sort by timestamp descending before display.
func (c *Client) ListHistory(ctx context.Context, sess models.Session) ([]models.HistoryEntry, error) {
	var entries []models.HistoryEntry
	err := c.postJSON(ctx, "/get_history", map[string]string{
		"email":    sess.Email,
		"password": sess.CredentialSecret,
	}, &entries)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// DeleteEntry removes one entry by id. Callers drop local state only after
// this returns nil.
func (c *Client) DeleteEntry(ctx context.Context, sess models.Session, entryID string) error {
	return c.postJSON(ctx, "/delete_entry", map[string]string{
		"email":    sess.Email,
		"password": sess.CredentialSecret,
		"entry_id": entryID,
	}, nil)
}

// ClearHistory removes every entry for the account.
func (c *Client) ClearHistory(ctx context.Context, sess models.Session) error {
	return c.postJSON(ctx, "/clear_history", map[string]string{
		"email":    sess.Email,
		"password": sess.CredentialSecret,
	}, nil)
}
