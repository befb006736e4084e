package model

import "time"

// Listing mirrors the `listings` table.  A listing's "verified" badge is
// never stored on this row; it is always derived at read time from the
// owning landlord's users.is_verified flag so the two facts cannot drift
// apart.
//
// Fields:
//  ID            – primary key identifier.
//  LandlordID    – owning landlord (users.id).
//  Title         – short display title.
//  PricePerMonth – positive rent amount.
//  ImageURL      – cover image.
//  Location      – free-form address string used for search and the map.
//  GPSLat/GPSLng – coordinates consumed by the mapping widget.
//  Description   – optional long text (nullable).
//  IsActive      – false once a booking is confirmed or an admin disables it.
//  CreatedAt     – timestamp of creation.
type Listing struct {
    ID            uint64    // listings.id
    LandlordID    uint64    // listings.landlord_id
    Title         string    // listings.title
    PricePerMonth float64   // listings.price_per_month
    ImageURL      string    // listings.image_url
    Location      string    // listings.location_address
    GPSLat        float64   // listings.gps_lat
    GPSLng        float64   // listings.gps_lng
    Description   *string   // listings.description (nullable)
    IsActive      bool      // listings.is_active
    CreatedAt     time.Time // listings.created_at
}
