package history_test

import (
	"context"
	"errors"
	"testing"

	"github.com/leaflens/leaflens/internal/gateway"
	"github.com/leaflens/leaflens/internal/history"
	"github.com/leaflens/leaflens/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockGateway struct {
	ListHistoryFunc  func(ctx context.Context, sess models.Session) ([]models.HistoryEntry, error)
	DeleteEntryFunc  func(ctx context.Context, sess models.Session, entryID string) error
	ClearHistoryFunc func(ctx context.Context, sess models.Session) error
}

func (m *mockGateway) ListHistory(ctx context.Context, sess models.Session) ([]models.HistoryEntry, error) {
	return m.ListHistoryFunc(ctx, sess)
}

func (m *mockGateway) DeleteEntry(ctx context.Context, sess models.Session, entryID string) error {
	return m.DeleteEntryFunc(ctx, sess, entryID)
}

func (m *mockGateway) ClearHistory(ctx context.Context, sess models.Session) error {
	return m.ClearHistoryFunc(ctx, sess)
}

type mockCache struct {
	entries  map[string][]models.HistoryEntry
	replaced int
}

func newMockCache() *mockCache {
	return &mockCache{entries: map[string][]models.HistoryEntry{}}
}

func (c *mockCache) Replace(_ context.Context, userID string, entries []models.HistoryEntry) error {
	c.entries[userID] = append([]models.HistoryEntry(nil), entries...)
	c.replaced++
	return nil
}

func (c *mockCache) ListByUser(_ context.Context, userID string) ([]models.HistoryEntry, error) {
	return c.entries[userID], nil
}

func (c *mockCache) Delete(_ context.Context, userID, entryID string) error {
	kept := c.entries[userID][:0]
	for _, e := range c.entries[userID] {
		if e.ID != entryID {
			kept = append(kept, e)
		}
	}
	c.entries[userID] = kept
	return nil
}

func (c *mockCache) Clear(_ context.Context, userID string) error {
	delete(c.entries, userID)
	return nil
}

var sess = models.Session{Email: "a@b.com", CredentialSecret: "secret1"}

func TestListSortsNewestFirst(t *testing.T) {
	gw := &mockGateway{ListHistoryFunc: func(context.Context, models.Session) ([]models.HistoryEntry, error) {
		return []models.HistoryEntry{
			{ID: "old", Timestamp: "2025-01-01T00:00:00Z"},
			{ID: "new", Timestamp: "2025-03-14T09:30:00Z"},
			{ID: "mid", Timestamp: "2025-02-01T12:00:00Z"},
		}, nil
	}}
	svc := history.NewService(gw, nil, nil)

	entries, err := svc.List(context.Background(), sess)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "new", entries[0].ID)
	assert.Equal(t, "mid", entries[1].ID)
	assert.Equal(t, "old", entries[2].ID)
}

func TestListMirrorsIntoCache(t *testing.T) {
	gw := &mockGateway{ListHistoryFunc: func(context.Context, models.Session) ([]models.HistoryEntry, error) {
		return []models.HistoryEntry{{ID: "e1", Timestamp: "2025-03-14T09:30:00Z"}}, nil
	}}
	cache := newMockCache()
	svc := history.NewService(gw, cache, nil)

	_, err := svc.List(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.replaced)
	assert.Len(t, cache.entries["a@b.com"], 1)
}

func TestListFallsBackToCacheWhenUnreachable(t *testing.T) {
	gw := &mockGateway{ListHistoryFunc: func(context.Context, models.Session) ([]models.HistoryEntry, error) {
		return nil, &gateway.RequestError{Kind: gateway.RequestServerUnavailable}
	}}
	cache := newMockCache()
	cache.entries["a@b.com"] = []models.HistoryEntry{
		{ID: "old", Timestamp: "2025-01-01T00:00:00Z"},
		{ID: "new", Timestamp: "2025-03-14T09:30:00Z"},
	}
	svc := history.NewService(gw, cache, nil)

	entries, err := svc.List(context.Background(), sess)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "new", entries[0].ID)
}

func TestListRejectionDoesNotFallBack(t *testing.T) {
	wantErr := &gateway.RequestError{Kind: gateway.RequestRejected, Status: 400}
	gw := &mockGateway{ListHistoryFunc: func(context.Context, models.Session) ([]models.HistoryEntry, error) {
		return nil, wantErr
	}}
	cache := newMockCache()
	cache.entries["a@b.com"] = []models.HistoryEntry{{ID: "e1"}}
	svc := history.NewService(gw, cache, nil)

	_, err := svc.List(context.Background(), sess)
	assert.ErrorIs(t, err, wantErr)
}

func TestDeleteMirrorsAfterBackendConfirms(t *testing.T) {
	deleted := ""
	gw := &mockGateway{DeleteEntryFunc: func(_ context.Context, _ models.Session, id string) error {
		deleted = id
		return nil
	}}
	cache := newMockCache()
	cache.entries["a@b.com"] = []models.HistoryEntry{{ID: "e1"}, {ID: "e2"}}
	svc := history.NewService(gw, cache, nil)

	require.NoError(t, svc.Delete(context.Background(), sess, "e1"))
	assert.Equal(t, "e1", deleted)
	require.Len(t, cache.entries["a@b.com"], 1)
	assert.Equal(t, "e2", cache.entries["a@b.com"][0].ID)
}

func TestDeleteFailureLeavesCacheUntouched(t *testing.T) {
	gw := &mockGateway{DeleteEntryFunc: func(context.Context, models.Session, string) error {
		return errors.New("backend refused")
	}}
	cache := newMockCache()
	cache.entries["a@b.com"] = []models.HistoryEntry{{ID: "e1"}}
	svc := history.NewService(gw, cache, nil)

	require.Error(t, svc.Delete(context.Background(), sess, "e1"))
	assert.Len(t, cache.entries["a@b.com"], 1)
}

func TestClear(t *testing.T) {
	cleared := false
	gw := &mockGateway{ClearHistoryFunc: func(context.Context, models.Session) error {
		cleared = true
		return nil
	}}
	cache := newMockCache()
	cache.entries["a@b.com"] = []models.HistoryEntry{{ID: "e1"}}
	svc := history.NewService(gw, cache, nil)

	require.NoError(t, svc.Clear(context.Background(), sess))
	assert.True(t, cleared)
	assert.Empty(t, cache.entries["a@b.com"])
}
