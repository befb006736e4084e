package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockConvoRepo(t *testing.T) (*ConversationRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewConversationRepo(db), mock
}

func TestPairKey(t *testing.T) {
	listing := uint64(12)

	// Order of the pair must not matter.
	assert.Equal(t, PairKey(3, 7, &listing), PairKey(7, 3, &listing))
	assert.Equal(t, "3:7:12", PairKey(7, 3, &listing))

	// The no-listing marker cannot collide with any numeric listing id.
	assert.Equal(t, "3:7:-", PairKey(3, 7, nil))
	assert.NotEqual(t, PairKey(3, 7, nil), PairKey(3, 7, &listing))

	// Different listings give different keys for the same pair.
	other := uint64(13)
	assert.NotEqual(t, PairKey(3, 7, &listing), PairKey(3, 7, &other))
}

func TestStartOrGetReturnsExisting(t *testing.T) {
	repo, mock := newMockConvoRepo(t)

	mock.ExpectQuery("SELECT id FROM conversations").
		WithArgs("3:7:-").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	id, created, err := repo.StartOrGet(context.Background(), 7, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), id)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStartOrGetCreates(t *testing.T) {
	repo, mock := newMockConvoRepo(t)
	listing := uint64(12)

	mock.ExpectQuery("SELECT id FROM conversations").
		WithArgs("3:7:12").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO conversations").
		WithArgs(&listing, "3:7:12").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec("INSERT INTO conversation_participants").
		WithArgs(uint64(11), uint64(3), uint64(11), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	id, created, err := repo.StartOrGet(context.Background(), 3, 7, &listing)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), id)
	assert.True(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// When two requests race to create the same conversation, the loser's
// INSERT hits the unique pair_key index and the loser must come back with
// the winner's id instead of an error.
func TestStartOrGetLosesCreateRace(t *testing.T) {
	repo, mock := newMockConvoRepo(t)

	mock.ExpectQuery("SELECT id FROM conversations").
		WithArgs("3:7:-").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO conversations").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry '3:7:-' for key 'conversations.pair_key'"))
	mock.ExpectQuery("SELECT id FROM conversations").
		WithArgs("3:7:-").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectRollback()

	id, created, err := repo.StartOrGet(context.Background(), 3, 7, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsParticipant(t *testing.T) {
	repo, mock := newMockConvoRepo(t)

	mock.ExpectQuery("SELECT 1 FROM conversation_participants").
		WithArgs(uint64(5), uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery("SELECT 1 FROM conversation_participants").
		WithArgs(uint64(5), uint64(99)).
		WillReturnError(sql.ErrNoRows)

	ok, err := repo.IsParticipant(context.Background(), 5, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.IsParticipant(context.Background(), 5, 99)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendMessageReturnsStoredRow(t *testing.T) {
	repo, mock := newMockConvoRepo(t)
	stored := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO messages").
		WithArgs(uint64(5), uint64(3), "is the room still free?").
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectQuery("SELECT id, conversation_id, sender_id, content, created_at FROM messages").
		WithArgs(uint64(21)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "conversation_id", "sender_id", "content", "created_at"}).
			AddRow(21, 5, 3, "is the room still free?", stored))

	m, err := repo.AppendMessage(context.Background(), 5, 3, "is the room still free?")
	require.NoError(t, err)
	assert.Equal(t, uint64(21), m.ID)
	assert.Equal(t, stored, m.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A conversation with no messages yet surfaces NULL message columns; the
// scan must map them to nil pointers rather than fail.
func TestListForUserHandlesEmptyConversation(t *testing.T) {
	repo, mock := newMockConvoRepo(t)
	last := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM conversations c").
		WithArgs(uint64(3), uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "listing_id", "title", "other_id", "other_email", "other_image", "content", "created_at",
		}).
			AddRow(5, 12, "Sunny room near campus", 7, "landlord@example.com", nil, "hello", last).
			AddRow(6, nil, nil, 8, "provider@example.com", nil, nil, nil))

	rows, err := repo.ListForUser(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, uint64(5), rows[0].ID)
	require.NotNil(t, rows[0].LastMessage)
	assert.Equal(t, "hello", *rows[0].LastMessage)

	assert.Nil(t, rows[1].ListingID)
	assert.Nil(t, rows[1].LastMessage)
	assert.Nil(t, rows[1].LastMessageAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
