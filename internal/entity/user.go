package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Role controls access to the staff surface.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

// User is a registered account. Customers sign up with a phone number;
// staff and admins additionally hold a password hash for the console.
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID            int64     `bun:",pk,autoincrement"`
	Email         string    `bun:"email"`
	Phone         string    `bun:"phone"`
	Name          string    `bun:"name"`
	Role          Role      `bun:"role"`
	PasswordHash  string    `bun:"password_hash"`
	PhoneVerified bool      `bun:"phone_verified"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero"`
}

// VerificationCode is a single-use phone verification code.
type VerificationCode struct {
	bun.BaseModel `bun:"table:verification_codes"`

	ID        int64     `bun:",pk,autoincrement"`
	Phone     string    `bun:"phone"`
	Code      string    `bun:"code"`
	ExpiresAt time.Time `bun:"expires_at"`
	Used      bool      `bun:"used"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}

// Expired reports whether the code can no longer be redeemed at now.
func (v *VerificationCode) Expired(now time.Time) bool {
	return !now.Before(v.ExpiresAt)
}

// SMSLog records one delivery attempt to the SMS collaborator.
type SMSLog struct {
	bun.BaseModel `bun:"table:sms_logs"`

	ID        int64     `bun:",pk,autoincrement"`
	Phone     string    `bun:"phone"`
	Body      string    `bun:"body"`
	Delivered bool      `bun:"delivered"`
	Error     string    `bun:"error"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}
