package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/kasistays/kasistays/internal/model"
	"github.com/kasistays/kasistays/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// isDupKey reports whether err is a MySQL duplicate-entry error (1062).
func isDupKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}

// Create inserts a user and returns its ID. The email unique index is the
// source of truth for duplicates; a 1062 collision maps to ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, email, password, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role) VALUES (?,?,?)",
		email, hash, role)
	if err != nil {
		if isDupKey(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// CreateLandlord inserts a landlord user together with its profile row in
// one transaction, so a half-registered landlord (user without profile)
// can never be observed.
func (r *UserRepo) CreateLandlord(ctx context.Context, email, password string, p model.LandlordProfile, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role) VALUES (?,?,?)",
		email, hash, model.RoleLandlord)
	if err != nil {
		if isDupKey(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO landlords (user_id, full_name, phone, id_number) VALUES (?,?,?,?)",
		uint64(id), p.FullName, p.Phone, p.IDNumber); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,role,is_verified,profile_image_url,created_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsVerified, &u.ProfileImageURL, &u.CreatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,role,is_verified,profile_image_url,created_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsVerified, &u.ProfileImageURL, &u.CreatedAt)
	return u, err
}

// AdminUserRow is the projection returned to the admin user list; the
// password hash is deliberately not selected.
type AdminUserRow struct {
	ID         uint64
	Email      string
	Role       string
	IsVerified bool
	CreatedAt  time.Time
}

// ListAll returns every user, newest first, for the admin dashboard.
func (r *UserRepo) ListAll(ctx context.Context) ([]AdminUserRow, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,email,role,is_verified,created_at FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]AdminUserRow, 0)
	for rows.Next() {
		var u AdminUserRow
		if err := rows.Scan(&u.ID, &u.Email, &u.Role, &u.IsVerified, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// SetVerified flips the admin-granted trust flag. The flag is stored once
// on the user row; listing responses derive their badge from it by join,
// so no listing rows need touching here.
func (r *UserRepo) SetVerified(ctx context.Context, userID uint64, verified bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_verified=? WHERE id=?", verified, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// RowsAffected is also 0 when the flag already had the desired
		// value, so re-check existence before reporting not found.
		var one int
		if err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id=?", userID).Scan(&one); err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound
			}
			return err
		}
	}
	return nil
}
