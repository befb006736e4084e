package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasistays/kasistays/internal/model"
)

// bcrypt's minimum cost keeps the hashing in these tests fast.
const testBcryptCost = 4

func newMockUserRepo(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserRepo(db), mock
}

func TestUserCreateNormalizesEmail(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("student@example.com", sqlmock.AnyArg(), "student").
		WillReturnResult(sqlmock.NewResult(42, 1))

	id, err := repo.Create(context.Background(), "  Student@Example.COM ", "pass123", "student", testBcryptCost)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'student@example.com' for key 'users.email'"))

	_, err := repo.Create(context.Background(), "student@example.com", "pass123", "student", testBcryptCost)
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Landlord signup writes the user row and the profile row in one
// transaction; a failure on the profile insert must roll both back.
func TestCreateLandlordTransactional(t *testing.T) {
	repo, mock := newMockUserRepo(t)
	profile := model.LandlordProfile{FullName: "T. Dlamini", Phone: "+27115550101", IDNumber: "8001015009087"}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").
		WithArgs("landlord@example.com", sqlmock.AnyArg(), "landlord").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec("INSERT INTO landlords").
		WithArgs(uint64(7), "T. Dlamini", "+27115550101", "8001015009087").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	id, err := repo.CreateLandlord(context.Background(), "landlord@example.com", "pass123", profile, testBcryptCost)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateLandlordRollsBackOnProfileFailure(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec("INSERT INTO landlords").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := repo.CreateLandlord(context.Background(), "landlord@example.com", "pass123",
		model.LandlordProfile{FullName: "T. Dlamini", Phone: "+27115550101", IDNumber: "8001015009087"}, testBcryptCost)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetVerifiedMissingUser(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	mock.ExpectExec("UPDATE users SET is_verified").
		WithArgs(true, uint64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM users").
		WithArgs(uint64(404)).
		WillReturnError(sql.ErrNoRows)

	err := repo.SetVerified(context.Background(), 404, true)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Granting a flag the user already has is a no-op, not an error.
func TestSetVerifiedAlreadySet(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	mock.ExpectExec("UPDATE users SET is_verified").
		WithArgs(true, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM users").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	assert.NoError(t, repo.SetVerified(context.Background(), 7, true))
	assert.NoError(t, mock.ExpectationsWereMet())
}
