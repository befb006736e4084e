package model

import "time"

// Maintenance request status values.  The lifecycle is expected to move
// forward (Open -> InProgress -> Resolved) but the landlord may set any of
// the three values at any time; there is deliberately no terminal lock.
const (
    MaintenanceOpen       = "Open"
    MaintenanceInProgress = "InProgress"
    MaintenanceResolved   = "Resolved"
)

// MaintenanceRequest mirrors the `maintenance_requests` table.  A request
// can only be created by a student who holds a confirmed booking on the
// listing; the landlord id is derived from that booking, never supplied
// by the client.
type MaintenanceRequest struct {
    ID         uint64    // maintenance_requests.id
    ListingID  uint64    // maintenance_requests.listing_id
    StudentID  uint64    // maintenance_requests.student_id
    LandlordID uint64    // maintenance_requests.landlord_id
    Issue      string    // maintenance_requests.issue_description
    Status     string    // maintenance_requests.status
    CreatedAt  time.Time // maintenance_requests.created_at
}

// ValidMaintenanceStatus reports whether s is one of the three known
// status values.
func ValidMaintenanceStatus(s string) bool {
    switch s {
    case MaintenanceOpen, MaintenanceInProgress, MaintenanceResolved:
        return true
    }
    return false
}
