package repository

import (
	"context"
	"database/sql"

	"github.com/kasistays/kasistays/internal/model"
)

// ListingRepo provides CRUD and search over rental listings. Every read
// joins users so the landlord's is_verified flag is computed at read time
// rather than copied onto the listing row.
type ListingRepo struct {
	db *sql.DB
}

// NewListingRepo returns a new ListingRepo bound to the given database.
func NewListingRepo(db *sql.DB) *ListingRepo { return &ListingRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions that
// span repositories, mirroring how multi-repo flows are wired elsewhere.
func (r *ListingRepo) DB() *sql.DB { return r.db }

// ListingView is a listing joined with its landlord's verification flag.
// It is the unit returned by every public and admin listing query.
type ListingView struct {
	model.Listing
	LandlordVerified bool
}

const listingSelect = `SELECT l.id, l.landlord_id, l.title, l.price_per_month, l.image_url,
       l.location_address, l.gps_lat, l.gps_lng, l.is_active, l.created_at,
       u.is_verified
FROM listings l
JOIN users u ON u.id = l.landlord_id`

func scanListingViews(rows *sql.Rows) ([]ListingView, error) {
	defer rows.Close()
	out := make([]ListingView, 0)
	for rows.Next() {
		var v ListingView
		if err := rows.Scan(&v.ID, &v.LandlordID, &v.Title, &v.PricePerMonth, &v.ImageURL,
			&v.Location, &v.GPSLat, &v.GPSLng, &v.IsActive, &v.CreatedAt,
			&v.LandlordVerified); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Search returns active listings, optionally filtered by a case-insensitive
// substring match against title OR location. MySQL LIKE is
// case-insensitive under the default collation, matching the original
// behaviour.
func (r *ListingRepo) Search(ctx context.Context, q string) ([]ListingView, error) {
	query := listingSelect + ` WHERE l.is_active = TRUE`
	args := []any{}
	if q != "" {
		query += ` AND (l.title LIKE ? OR l.location_address LIKE ?)`
		args = append(args, "%"+q+"%", "%"+q+"%")
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanListingViews(rows)
}

// Recent returns the newest eight active listings for the landing page.
func (r *ListingRepo) Recent(ctx context.Context) ([]ListingView, error) {
	rows, err := r.db.QueryContext(ctx,
		listingSelect+` WHERE l.is_active = TRUE ORDER BY l.created_at DESC LIMIT 8`)
	if err != nil {
		return nil, err
	}
	return scanListingViews(rows)
}

// ListAll returns every listing including inactive ones, newest first.
// Admin only.
func (r *ListingRepo) ListAll(ctx context.Context) ([]ListingView, error) {
	rows, err := r.db.QueryContext(ctx, listingSelect+` ORDER BY l.created_at DESC`)
	if err != nil {
		return nil, err
	}
	return scanListingViews(rows)
}

// Create inserts a new active listing and populates the generated ID and
// timestamps on the provided struct by reading the row back.
func (r *ListingRepo) Create(ctx context.Context, l *model.Listing) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO listings (landlord_id, title, price_per_month, image_url, location_address, gps_lat, gps_lng, description)
		 VALUES (?,?,?,?,?,?,?,?)`,
		l.LandlordID, l.Title, l.PricePerMonth, l.ImageURL, l.Location, l.GPSLat, l.GPSLng, l.Description)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)
	// Query back to populate defaults (is_active, created_at).
	return r.db.QueryRowContext(ctx,
		`SELECT is_active, created_at FROM listings WHERE id = ?`, l.ID).
		Scan(&l.IsActive, &l.CreatedAt)
}

// SetActive toggles a listing's active flag (admin oversight).
func (r *ListingRepo) SetActive(ctx context.Context, listingID uint64, active bool) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE listings SET is_active=? WHERE id=?", active, listingID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx, "SELECT 1 FROM listings WHERE id=?", listingID).Scan(&one); err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound
			}
			return err
		}
	}
	return nil
}
