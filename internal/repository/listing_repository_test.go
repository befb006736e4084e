package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasistays/kasistays/internal/model"
)

func newMockListingRepo(t *testing.T) (*ListingRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewListingRepo(db), mock
}

func listingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "landlord_id", "title", "price_per_month", "image_url",
		"location_address", "gps_lat", "gps_lng", "is_active", "created_at",
		"is_verified",
	})
}

// The landlord's verification badge is joined in at read time, so an admin
// toggling the flag is visible on the very next catalog read.
func TestListingSearchJoinsVerification(t *testing.T) {
	repo, mock := newMockListingRepo(t)
	created := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("JOIN users u ON u.id = l.landlord_id WHERE l.is_active").
		WithArgs("%braam%", "%braam%").
		WillReturnRows(listingRows().
			AddRow(9, 7, "Room in Braamfontein", 4500.0, "https://img.example/1.jpg",
				"Braamfontein, Johannesburg", -26.19, 28.03, true, created, true))

	views, err := repo.Search(context.Background(), "braam")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Room in Braamfontein", views[0].Title)
	assert.True(t, views[0].LandlordVerified)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingSearchNoTermReturnsAllActive(t *testing.T) {
	repo, mock := newMockListingRepo(t)

	// Without a term the query carries no LIKE arguments at all.
	mock.ExpectQuery("WHERE l.is_active").
		WillReturnRows(listingRows())

	views, err := repo.Search(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, views)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Create reads the row back so DB-assigned defaults land on the struct.
func TestListingCreatePopulatesDefaults(t *testing.T) {
	repo, mock := newMockListingRepo(t)
	created := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	l := &model.Listing{
		LandlordID: 7, Title: "Room in Braamfontein", PricePerMonth: 4500,
		ImageURL: "https://img.example/1.jpg", Location: "Braamfontein, Johannesburg",
		GPSLat: -26.19, GPSLng: 28.03,
	}

	mock.ExpectExec("INSERT INTO listings").
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectQuery("SELECT is_active, created_at FROM listings").
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"is_active", "created_at"}).AddRow(true, created))

	require.NoError(t, repo.Create(context.Background(), l))
	assert.Equal(t, uint64(9), l.ID)
	assert.True(t, l.IsActive)
	assert.Equal(t, created, l.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingSetActiveMissing(t *testing.T) {
	repo, mock := newMockListingRepo(t)

	mock.ExpectExec("UPDATE listings SET is_active").
		WithArgs(true, uint64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM listings").
		WithArgs(uint64(404)).
		WillReturnError(sql.ErrNoRows)

	err := repo.SetActive(context.Background(), 404, true)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Setting the flag to its current value affects zero rows but must not be
// reported as a missing listing.
func TestListingSetActiveIdempotent(t *testing.T) {
	repo, mock := newMockListingRepo(t)

	mock.ExpectExec("UPDATE listings SET is_active").
		WithArgs(true, uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM listings").
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	assert.NoError(t, repo.SetActive(context.Background(), 9, true))
	assert.NoError(t, mock.ExpectationsWereMet())
}
