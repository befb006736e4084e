package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/kasistays/kasistays/internal/model"
)

// MaintenanceRepo stores issue reports tied to a confirmed booking.
type MaintenanceRepo struct {
	db *sql.DB
}

// NewMaintenanceRepo returns a new MaintenanceRepo bound to the given database.
func NewMaintenanceRepo(db *sql.DB) *MaintenanceRepo { return &MaintenanceRepo{db: db} }

// Create inserts an Open maintenance request for the student's confirmed
// booking on the listing. The landlord is derived from that booking, never
// taken from the client. ErrNotFound is returned when the student holds no
// confirmed booking on the listing; pending or declined bookings do not
// qualify.
func (r *MaintenanceRepo) Create(ctx context.Context, studentID, listingID uint64, issue string) (uint64, error) {
	var landlordID uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT landlord_id FROM bookings
		 WHERE student_id = ? AND listing_id = ? AND status = ?
		 LIMIT 1`,
		studentID, listingID, model.BookingConfirmed).Scan(&landlordID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrNotFound
		}
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO maintenance_requests (listing_id, student_id, landlord_id, issue_description, status)
		 VALUES (?,?,?,?,?)`,
		listingID, studentID, landlordID, issue, model.MaintenanceOpen)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// RequestRow is the projection shown on both dashboards.
type RequestRow struct {
	ID        uint64
	ListingID uint64
	Issue     string
	Status    string
	CreatedAt time.Time
}

func (r *MaintenanceRepo) listBy(ctx context.Context, column string, userID uint64) ([]RequestRow, error) {
	q := `SELECT id, listing_id, issue_description, status, created_at
	      FROM maintenance_requests WHERE ` + column + ` = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]RequestRow, 0)
	for rows.Next() {
		var m RequestRow
		if err := rows.Scan(&m.ID, &m.ListingID, &m.Issue, &m.Status, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListForStudent returns requests authored by the student, newest first.
func (r *MaintenanceRepo) ListForStudent(ctx context.Context, studentID uint64) ([]RequestRow, error) {
	return r.listBy(ctx, "student_id", studentID)
}

// ListForLandlord returns requests received by the landlord, newest first.
func (r *MaintenanceRepo) ListForLandlord(ctx context.Context, landlordID uint64) ([]RequestRow, error) {
	return r.listBy(ctx, "landlord_id", landlordID)
}

// UpdateStatus overwrites the request status. The landlord-scoped
// predicate doubles as the authorization check: zero affected rows means
// the request does not exist or belongs to another landlord, reported
// uniformly as ErrForbidden. There is no ordering guard; any of the three
// statuses may be set at any time.
func (r *MaintenanceRepo) UpdateStatus(ctx context.Context, requestID, landlordID uint64, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE maintenance_requests SET status = ? WHERE id = ? AND landlord_id = ?`,
		status, requestID, landlordID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish "same value rewritten" from "not yours / absent".
		var one int
		err := r.db.QueryRowContext(ctx,
			`SELECT 1 FROM maintenance_requests WHERE id = ? AND landlord_id = ?`,
			requestID, landlordID).Scan(&one)
		if err == sql.ErrNoRows {
			return ErrForbidden
		}
		return err
	}
	return nil
}
