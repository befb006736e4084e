package repository

import (
	"context"
	"database/sql"
)

// ProviderRepo reads the service-provider directory: users with
// role=provider joined with their profile row.
type ProviderRepo struct {
	db *sql.DB
}

func NewProviderRepo(db *sql.DB) *ProviderRepo { return &ProviderRepo{db: db} }

// ProviderRow is one directory entry.
type ProviderRow struct {
	ID       uint64
	Name     string
	Service  string
	Contact  string
	ImageURL *string
}

// Search returns all providers, optionally filtered by a case-insensitive
// substring match against name OR service category.
func (r *ProviderRepo) Search(ctx context.Context, q string) ([]ProviderRow, error) {
	query := `SELECT u.id, spp.full_name, spp.service_category, spp.contact_phone, u.profile_image_url
FROM users u
JOIN service_provider_profiles spp ON u.id = spp.user_id
WHERE u.role = 'provider'`
	args := []any{}
	if q != "" {
		query += ` AND (spp.full_name LIKE ? OR spp.service_category LIKE ?)`
		args = append(args, "%"+q+"%", "%"+q+"%")
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ProviderRow, 0)
	for rows.Next() {
		var p ProviderRow
		if err := rows.Scan(&p.ID, &p.Name, &p.Service, &p.Contact, &p.ImageURL); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
