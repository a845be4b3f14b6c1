package model

import (
	"strings"
	"time"
)

// Role is the authorization role stored on users.role.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// LoginMethodLocal marks accounts that authenticate with an email and
// password stored in this service. Other values come from external providers
// and can never log in with a password.
const LoginMethodLocal = "local"

// User represents a row of the `users` table.
//
// Fields:
//
//	ID              – primary key identifier of the user.
//	Name, Phone     – profile fields required before registering for events.
//	Email           – unique address, compared exactly as stored.
//	PasswordHash    – bcrypt hash; empty for non-local accounts.
//	AccountNumber   – free-form bank account string required for paid events.
//	AlwaysAvailable – bypasses the admin slot gate when creating events.
//	LoginMethod     – "local" or the name of an external provider.
//	Role            – user or admin.
type User struct {
	ID              uint64    // users.id
	Name            string    // users.name
	Email           string    // users.email
	Phone           string    // users.phone
	PasswordHash    string    // users.password_hash
	AccountNumber   string    // users.account_number
	AlwaysAvailable bool      // users.always_available
	LoginMethod     string    // users.login_method
	Role            Role      // users.role
	CreatedAt       time.Time // users.created_at
	UpdatedAt       time.Time // users.updated_at
	LastSignedIn    time.Time // users.last_signed_in
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// ProfileComplete reports whether name and phone are both set.
func (u User) ProfileComplete() bool {
	return strings.TrimSpace(u.Name) != "" && strings.TrimSpace(u.Phone) != ""
}

// HasPaymentSetup reports whether a bank account string is on file.
func (u User) HasPaymentSetup() bool { return strings.TrimSpace(u.AccountNumber) != "" }

// RefreshToken models an entry in the `refresh_tokens` table. Only the
// SHA-256 hash of the raw token is stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}

// PasswordResetToken models an entry in `password_reset_tokens`. A token is
// single use and expires at ExpiresAt.
type PasswordResetToken struct {
	ID        uint64
	UserID    uint64
	Token     string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}
