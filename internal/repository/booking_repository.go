package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/kasistays/kasistays/internal/model"
)

// BookingRepo owns the booking state machine: a student's pending request
// and the landlord's terminal accept/decline decision. Both write paths
// run inside transactions because their invariants span rows: a student
// may hold at most one live request per listing, and at most one booking
// per listing may ever reach confirmed.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// Create validates the listing and the one-live-request rule, then inserts
// a pending booking denormalizing the listing's current landlord. All
// three steps share one transaction; the listing row is locked FOR UPDATE
// so creation serializes against a concurrent confirm that would
// deactivate the listing.
//
// Errors: ErrNotFound (listing absent), ErrListingUnavailable (inactive),
// ErrDuplicateBooking (student already holds a non-declined request).
func (r *BookingRepo) Create(ctx context.Context, listingID, studentID uint64) (uint64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var landlordID uint64
	var isActive bool
	err = tx.QueryRowContext(ctx,
		`SELECT landlord_id, is_active FROM listings WHERE id = ? FOR UPDATE`,
		listingID).Scan(&landlordID, &isActive)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrNotFound
		}
		return 0, err
	}
	if !isActive {
		return 0, ErrListingUnavailable
	}

	// One live (non-declined) request per (listing, student). The lookup
	// runs under the listing lock taken above, so two simultaneous
	// requests from the same student serialize here instead of both
	// passing the check.
	var existing uint64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM bookings WHERE listing_id = ? AND student_id = ? AND status != ? LIMIT 1`,
		listingID, studentID, model.BookingDeclined).Scan(&existing)
	if err == nil {
		return 0, ErrDuplicateBooking
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (listing_id, student_id, landlord_id, status) VALUES (?,?,?,?)`,
		listingID, studentID, landlordID, model.BookingPending)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return uint64(id), nil
}

// DecideResult carries what the handler needs after a decision: the
// affected listing and, for confirmed decisions, the details published on
// the booking.confirmed queue.
type DecideResult struct {
	BookingID    uint64
	ListingID    uint64
	ListingTitle string
	StudentID    uint64
	LandlordID   uint64
	Status       string
}

// Decide applies a landlord's terminal decision to a pending booking.
//
// The whole path is one transaction. The initial SELECT ... FOR UPDATE
// matches (id, landlord_id, status=pending); a row that does not exist,
// belongs to someone else, or is already terminal all yield
// ErrNotActionable, reported identically upstream. Every UPDATE repeats
// the status='pending' guard so a rival decision that slipped in between
// affects zero rows rather than overwriting terminal state.
//
// On confirmed, three effects commit together or not at all: this booking
// becomes confirmed, the listing is deactivated, and every other pending
// booking on the listing is declined. No reader may observe the listing
// still active with this booking confirmed, nor rival bookings still
// pending after it.
func (r *BookingRepo) Decide(ctx context.Context, bookingID, landlordID uint64, status string) (DecideResult, error) {
	out := DecideResult{BookingID: bookingID, LandlordID: landlordID, Status: status}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return out, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	err = tx.QueryRowContext(ctx,
		`SELECT b.listing_id, b.student_id, l.title
		 FROM bookings b
		 JOIN listings l ON l.id = b.listing_id
		 WHERE b.id = ? AND b.landlord_id = ? AND b.status = ?
		 FOR UPDATE`,
		bookingID, landlordID, model.BookingPending).
		Scan(&out.ListingID, &out.StudentID, &out.ListingTitle)
	if err != nil {
		if err == sql.ErrNoRows {
			return out, ErrNotActionable
		}
		return out, err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE id = ? AND status = ?`,
		status, bookingID, model.BookingPending)
	if err != nil {
		return out, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return out, err
	} else if n == 0 {
		// Lost the race to a rival decision after all.
		return out, ErrNotActionable
	}

	if status == model.BookingConfirmed {
		if _, err := tx.ExecContext(ctx,
			`UPDATE listings SET is_active = FALSE WHERE id = ?`, out.ListingID); err != nil {
			return out, err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE bookings SET status = ? WHERE listing_id = ? AND status = ?`,
			model.BookingDeclined, out.ListingID, model.BookingPending); err != nil {
			return out, err
		}
	}

	if err := tx.Commit(); err != nil {
		return out, err
	}
	committed = true
	return out, nil
}

// StudentBookingRow is a booking joined with its listing title for the
// student dashboard.
type StudentBookingRow struct {
	ID           uint64
	Status       string
	CreatedAt    time.Time
	ListingID    uint64
	ListingTitle string
}

// LandlordBookingRow additionally exposes the requesting student's email
// so the landlord can recognize who is asking.
type LandlordBookingRow struct {
	ID           uint64
	Status       string
	CreatedAt    time.Time
	ListingID    uint64
	ListingTitle string
	StudentEmail string
}

// ListForStudent returns the student's bookings, newest first.
func (r *BookingRepo) ListForStudent(ctx context.Context, studentID uint64) ([]StudentBookingRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT b.id, b.status, b.created_at, l.id, l.title
		 FROM bookings b
		 JOIN listings l ON l.id = b.listing_id
		 WHERE b.student_id = ?
		 ORDER BY b.created_at DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]StudentBookingRow, 0)
	for rows.Next() {
		var b StudentBookingRow
		if err := rows.Scan(&b.ID, &b.Status, &b.CreatedAt, &b.ListingID, &b.ListingTitle); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ListForLandlord returns bookings made against the landlord's listings,
// newest first.
func (r *BookingRepo) ListForLandlord(ctx context.Context, landlordID uint64) ([]LandlordBookingRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT b.id, b.status, b.created_at, l.id, l.title, u.email
		 FROM bookings b
		 JOIN listings l ON l.id = b.listing_id
		 JOIN users u ON u.id = b.student_id
		 WHERE b.landlord_id = ?
		 ORDER BY b.created_at DESC`, landlordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]LandlordBookingRow, 0)
	for rows.Next() {
		var b LandlordBookingRow
		if err := rows.Scan(&b.ID, &b.Status, &b.CreatedAt, &b.ListingID, &b.ListingTitle, &b.StudentEmail); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
