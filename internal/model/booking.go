package model

import "time"

// Booking status values.  pending is the only non-terminal state: once a
// booking is confirmed or declined no further transition is permitted.
const (
    BookingPending   = "pending"
    BookingConfirmed = "confirmed"
    BookingDeclined  = "declined"
)

// Booking records a student's request to rent a listing.  The landlord id
// is a denormalized copy of the listing's landlord taken when the request
// is created, which lets the landlord dashboard query bookings without a
// join through listings.
//
// Fields:
//  ID         – primary key identifier.
//  ListingID  – listing being requested.
//  StudentID  – requesting student.
//  LandlordID – landlord owning the listing at creation time.
//  Status     – pending, confirmed or declined.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last status change.
type Booking struct {
    ID         uint64    // bookings.id
    ListingID  uint64    // bookings.listing_id
    StudentID  uint64    // bookings.student_id
    LandlordID uint64    // bookings.landlord_id
    Status     string    // bookings.status
    CreatedAt  time.Time // bookings.created_at
    UpdatedAt  time.Time // bookings.updated_at
}

// ValidDecision reports whether a landlord's decision value is one of the
// two terminal booking states.
func ValidDecision(status string) bool {
    return status == BookingConfirmed || status == BookingDeclined
}
