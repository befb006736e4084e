package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*BookingRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewBookingRepo(db), mock
}

func TestBookingCreate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT landlord_id, is_active FROM listings").
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"landlord_id", "is_active"}).AddRow(7, true))
	mock.ExpectQuery("SELECT id FROM bookings").
		WithArgs(uint64(9), uint64(3), "declined").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(uint64(9), uint64(3), uint64(7), "pending").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	id, err := repo.Create(context.Background(), 9, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingCreateListingAbsent(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT landlord_id, is_active FROM listings").
		WithArgs(uint64(9)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), 9, 3)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingCreateInactiveListing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT landlord_id, is_active FROM listings").
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"landlord_id", "is_active"}).AddRow(7, false))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), 9, 3)
	assert.ErrorIs(t, err, ErrListingUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingCreateDuplicateRequest(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT landlord_id, is_active FROM listings").
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"landlord_id", "is_active"}).AddRow(7, true))
	mock.ExpectQuery("SELECT id FROM bookings").
		WithArgs(uint64(9), uint64(3), "declined").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), 9, 3)
	assert.ErrorIs(t, err, ErrDuplicateBooking)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Confirming a booking must also deactivate the listing and decline every
// rival pending booking, all in the same transaction.
func TestBookingDecideConfirmCascades(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings b").
		WithArgs(uint64(42), uint64(7), "pending").
		WillReturnRows(sqlmock.NewRows([]string{"listing_id", "student_id", "title"}).
			AddRow(9, 3, "Sunny room near campus"))
	mock.ExpectExec("UPDATE bookings SET status").
		WithArgs("confirmed", uint64(42), "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE listings SET is_active").
		WithArgs(uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bookings SET status").
		WithArgs("declined", uint64(9), "pending").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	res, err := repo.Decide(context.Background(), 42, 7, "confirmed")
	require.NoError(t, err)
	assert.Equal(t, uint64(9), res.ListingID)
	assert.Equal(t, uint64(3), res.StudentID)
	assert.Equal(t, "Sunny room near campus", res.ListingTitle)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Declining touches only the booking row; the listing stays active.
func TestBookingDecideDecline(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings b").
		WithArgs(uint64(42), uint64(7), "pending").
		WillReturnRows(sqlmock.NewRows([]string{"listing_id", "student_id", "title"}).
			AddRow(9, 3, "Sunny room near campus"))
	mock.ExpectExec("UPDATE bookings SET status").
		WithArgs("declined", uint64(42), "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := repo.Decide(context.Background(), 42, 7, "declined")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Absent, foreign-owned and already-decided bookings all collapse into the
// same ErrNotActionable because the locking SELECT matches none of them.
func TestBookingDecideNotActionable(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings b").
		WithArgs(uint64(42), uint64(7), "pending").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Decide(context.Background(), 42, 7, "confirmed")
	assert.ErrorIs(t, err, ErrNotActionable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A rival decision committing between the lock and the update leaves zero
// affected rows; the guard turns that into ErrNotActionable instead of
// silently overwriting terminal state.
func TestBookingDecideLosesRace(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings b").
		WithArgs(uint64(42), uint64(7), "pending").
		WillReturnRows(sqlmock.NewRows([]string{"listing_id", "student_id", "title"}).
			AddRow(9, 3, "Sunny room near campus"))
	mock.ExpectExec("UPDATE bookings SET status").
		WithArgs("confirmed", uint64(42), "pending").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Decide(context.Background(), 42, 7, "confirmed")
	assert.ErrorIs(t, err, ErrNotActionable)
	assert.NoError(t, mock.ExpectationsWereMet())
}
