package model

// ServiceProviderProfile holds the directory entry shown for users with
// role=provider.  One row per provider user.
type ServiceProviderProfile struct {
    UserID          uint64  // service_provider_profiles.user_id
    FullName        string  // service_provider_profiles.full_name
    ServiceCategory string  // service_provider_profiles.service_category
    ContactPhone    string  // service_provider_profiles.contact_phone
}

// LandlordProfile holds the extra identity details collected by the
// landlord signup flow.
type LandlordProfile struct {
    UserID   uint64 // landlords.user_id
    FullName string // landlords.full_name
    Phone    string // landlords.phone
    IDNumber string // landlords.id_number
}
