package handler

import (
	"database/sql"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasistays/kasistays/internal/repository"
)

func newBookingHandler(t *testing.T) (*BookingHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewBookingHandler(repository.NewBookingRepo(db)), mock
}

func TestBookListingMissingListing(t *testing.T) {
	h, mock := newBookingHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT landlord_id, is_active FROM listings").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	c, rec := authedContext(t, http.MethodPost, "/api/listings/404/book", "", 3, "s@example.com", "student")
	c.SetParamNames("id")
	c.SetParamValues("404")

	require.NoError(t, h.BookListing(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookListingDuplicateIsConflict(t *testing.T) {
	h, mock := newBookingHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT landlord_id, is_active FROM listings").
		WillReturnRows(sqlmock.NewRows([]string{"landlord_id", "is_active"}).AddRow(7, true))
	mock.ExpectQuery("SELECT id FROM bookings").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectRollback()

	c, rec := authedContext(t, http.MethodPost, "/api/listings/9/book", "", 3, "s@example.com", "student")
	c.SetParamNames("id")
	c.SetParamValues("9")

	require.NoError(t, h.BookListing(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDecideBookingRejectsUnknownStatus(t *testing.T) {
	h, _ := newBookingHandler(t)

	c, rec := authedContext(t, http.MethodPut, "/api/bookings/42/status",
		`{"status":"maybe"}`, 7, "l@example.com", "landlord")
	c.SetParamNames("id")
	c.SetParamValues("42")

	require.NoError(t, h.DecideBooking(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// A booking that is absent, already decided or owned by another landlord
// yields the same 404 body.
func TestDecideBookingNotActionable(t *testing.T) {
	h, mock := newBookingHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings b").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	c, rec := authedContext(t, http.MethodPut, "/api/bookings/42/status",
		`{"status":"declined"}`, 7, "l@example.com", "landlord")
	c.SetParamNames("id")
	c.SetParamValues("42")

	require.NoError(t, h.DecideBooking(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not found or you do not have permission")
}

func TestDecideBookingDecline(t *testing.T) {
	h, mock := newBookingHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings b").
		WillReturnRows(sqlmock.NewRows([]string{"listing_id", "student_id", "title"}).
			AddRow(9, 3, "Sunny room near campus"))
	mock.ExpectExec("UPDATE bookings SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := authedContext(t, http.MethodPut, "/api/bookings/42/status",
		`{"status":"declined"}`, 7, "l@example.com", "landlord")
	c.SetParamNames("id")
	c.SetParamValues("42")

	require.NoError(t, h.DecideBooking(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "declined")
	assert.NoError(t, mock.ExpectationsWereMet())
}
