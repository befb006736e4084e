package model

import "time"

// Role values stored in users.role.  Role is immutable after signup; there
// is no endpoint that changes it.
const (
    RoleStudent  = "student"
    RoleLandlord = "landlord"
    RoleProvider = "provider"
    RoleAdmin    = "admin"
)

// User represents an application user record as stored in the `users`
// table.  Each field corresponds to a column in the database.  The json
// tags are omitted here because these structs are used internally by the
// repository layer; handlers define separate response types with
// appropriate JSON tags.
//
// Fields:
//  ID              – primary key identifier of the user.
//  Email           – unique email address.
//  PasswordHash    – bcrypt hashed password.
//  Role            – one of the Role* constants above.
//  IsVerified      – admin-granted trust flag; only meaningful for
//                    landlords but stored on every row.
//  ProfileImageURL – optional avatar shown in the inbox (nullable).
//  CreatedAt       – timestamp of creation.
type User struct {
    ID              uint64    // users.id
    Email           string    // users.email
    PasswordHash    string    // users.password_hash
    Role            string    // users.role
    IsVerified      bool      // users.is_verified
    ProfileImageURL *string   // users.profile_image_url (nullable)
    CreatedAt       time.Time // users.created_at
}

// ValidSignupRole reports whether a role may be chosen at self-service
// signup.  Admin accounts are seeded out of band and can never be created
// through the public API.
func ValidSignupRole(role string) bool {
    switch role {
    case RoleStudent, RoleLandlord, RoleProvider:
        return true
    }
    return false
}
