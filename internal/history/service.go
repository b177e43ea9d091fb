// Package history serves a user's identification history, layering a local
// SQLite cache under the backend so listings survive a server outage.
package history

import (
	"context"
	"sort"

	"github.com/leaflens/leaflens/internal/gateway"
	"github.com/leaflens/leaflens/internal/models"
	"go.uber.org/zap"
)

// Gateway is the slice of the backend client the history service needs.
type Gateway interface {
	ListHistory(ctx context.Context, sess models.Session) ([]models.HistoryEntry, error)
	DeleteEntry(ctx context.Context, sess models.Session, entryID string) error
	ClearHistory(ctx context.Context, sess models.Session) error
}

// Cache is the local store entries are mirrored into.
type Cache interface {
	Replace(ctx context.Context, userID string, entries []models.HistoryEntry) error
	ListByUser(ctx context.Context, userID string) ([]models.HistoryEntry, error)
	Delete(ctx context.Context, userID, entryID string) error
	Clear(ctx context.Context, userID string) error
}

// Service lists and mutates history, keeping the cache in step with the
// backend. The backend is authoritative; the cache only answers when the
// backend cannot be reached.
type Service struct {
	gw    Gateway
	cache Cache
	log   *zap.Logger
}

// NewService builds a history service. cache may be nil, which disables the
// offline fallback.
func NewService(gw Gateway, cache Cache, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{gw: gw, cache: cache, log: log}
}

// List fetches the user's history from the backend and re-sorts it newest
// first. Server ordering is not trusted: entries are keyed by RFC 3339
// timestamps, which sort correctly as strings. On success the result is
// mirrored into the cache; when the backend is unreachable the cached copy
// is served instead.
func (s *Service) List(ctx context.Context, sess models.Session) ([]models.HistoryEntry, error) {
	entries, err := s.gw.ListHistory(ctx, sess)
	if err != nil {
		if s.cache != nil && gateway.Unreachable(err) {
			cached, cacheErr := s.cache.ListByUser(ctx, sess.Email)
			if cacheErr != nil {
				s.log.Warn("history cache read failed", zap.Error(cacheErr))
				return nil, err
			}
			s.log.Info("server unreachable, serving cached history", zap.Int("entries", len(cached)))
			sortEntries(cached)
			return cached, nil
		}
		return nil, err
	}

	sortEntries(entries)

	if s.cache != nil {
		if err := s.cache.Replace(ctx, sess.Email, entries); err != nil {
			s.log.Warn("history cache write failed", zap.Error(err))
		}
	}
	return entries, nil
}

// Delete removes one entry on the backend, then mirrors the removal into the
// cache. The cache is touched only after the backend confirms.
func (s *Service) Delete(ctx context.Context, sess models.Session, entryID string) error {
	if err := s.gw.DeleteEntry(ctx, sess, entryID); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, sess.Email, entryID); err != nil {
			s.log.Warn("history cache delete failed", zap.Error(err))
		}
	}
	return nil
}

// Clear wipes the user's history on the backend, then the cache.
func (s *Service) Clear(ctx context.Context, sess models.Session) error {
	if err := s.gw.ClearHistory(ctx, sess); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Clear(ctx, sess.Email); err != nil {
			s.log.Warn("history cache clear failed", zap.Error(err))
		}
	}
	return nil
}

func sortEntries(entries []models.HistoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})
}
