package queue

// BookingConfirmedEvent is the message published to the booking.confirmed
// queue when a landlord confirms a booking. It carries enough context for
// downstream consumers (notifications, audit) without a database lookup.
type BookingConfirmedEvent struct {
    BookingID    uint64 `json:"booking_id"`
    ListingID    uint64 `json:"listing_id"`
    ListingTitle string `json:"listing_title"`
    StudentID    uint64 `json:"student_id"`
    LandlordID   uint64 `json:"landlord_id"`
    ConfirmedAt  string `json:"confirmed_at"` // RFC3339 UTC
}
