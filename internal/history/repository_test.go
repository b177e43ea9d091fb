package history_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leaflens/leaflens/internal/history"
	"github.com/leaflens/leaflens/internal/models"
	"github.com/leaflens/leaflens/internal/plantinfo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entryInfo() plantinfo.InfoMap {
	var m plantinfo.InfoMap
	m.Set("scientific_name", plantinfo.Scalar("Azadirachta indica"))
	return m
}

func TestReplaceCommitsTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM entries WHERE user_id = ?`)).
		WithArgs("a@b.com").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO entries").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	repo := history.NewSQLiteRepository(db)
	entries := []models.HistoryEntry{
		{ID: "e1", PlantName: "Neem", Confidence: 0.94, Timestamp: "2025-03-14T09:30:00Z", Info: entryInfo()},
	}
	require.NoError(t, repo.Replace(context.Background(), "a@b.com", entries))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceRollsBackOnInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM entries WHERE user_id = ?`)).
		WithArgs("a@b.com").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO entries").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	repo := history.NewSQLiteRepository(db)
	entries := []models.HistoryEntry{{ID: "e1", Timestamp: "2025-03-14T09:30:00Z", Info: entryInfo()}}
	require.Error(t, repo.Replace(context.Background(), "a@b.com", entries))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "plant_name", "confidence", "image_url", "timestamp", "info", "tts"}).
		AddRow("e2", "Tulsi", 0.91, "", "2025-03-14T09:30:00Z", []byte(`{"scientific_name":"Ocimum tenuiflorum"}`), "").
		AddRow("e1", "Neem", 0.94, "/uploads/neem.jpg", "2025-01-01T00:00:00Z", []byte(`{"scientific_name":"Azadirachta indica"}`), "")
	mock.ExpectQuery("SELECT id, plant_name, confidence").
		WithArgs("a@b.com").
		WillReturnRows(rows)

	repo := history.NewSQLiteRepository(db)
	entries, err := repo.ListByUser(context.Background(), "a@b.com")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "e2", entries[0].ID)
	assert.Equal(t, "a@b.com", entries[0].UserID)
	v, ok := entries[0].Info.Get("scientific_name")
	require.True(t, ok)
	assert.Equal(t, "Ocimum tenuiflorum", v.Scalar())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAndClear(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM entries WHERE user_id = ? AND id = ?`)).
		WithArgs("a@b.com", "e1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM entries WHERE user_id = ?`)).
		WithArgs("a@b.com").
		WillReturnResult(sqlmock.NewResult(0, 3))

	repo := history.NewSQLiteRepository(db)
	require.NoError(t, repo.Delete(context.Background(), "a@b.com", "e1"))
	require.NoError(t, repo.Clear(context.Background(), "a@b.com"))
	require.NoError(t, mock.ExpectationsWereMet())
}
