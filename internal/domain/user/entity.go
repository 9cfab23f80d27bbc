package user

import (
	"errors"
	"time"
)

// ErrUserNotFound is returned by repositories when no row matches an id.
var ErrUserNotFound = errors.New("user not found")

// User represents a user account.
//
// Email is a lookup key for login and verification but is not unique. When several
// accounts share an email, credential lookups resolve to the lowest id; no stronger
// rule is defined.
type User struct {
	ID       int64  // ID is assigned by the store on creation and never changes
	Name     string // Name is the display name of the user
	Email    string // Email is the address verification links are sent to
	Password string // Password is stored and compared in plain form

	IsEmailVerified         bool       // IsEmailVerified is false until a token is redeemed
	VerificationToken       *string    // VerificationToken is set only while a verification is outstanding
	VerificationTokenExpiry *time.Time // VerificationTokenExpiry is set together with VerificationToken
}

// HasPendingVerification reports whether a verification token is outstanding.
func (u *User) HasPendingVerification() bool {
	return u.VerificationToken != nil && u.VerificationTokenExpiry != nil
}

// IssueVerification records an outstanding token. Both token fields change together.
func (u *User) IssueVerification(token string, expiry time.Time) {
	u.VerificationToken = &token
	u.VerificationTokenExpiry = &expiry
}

// MarkVerified sets the verified flag and clears the token fields.
func (u *User) MarkVerified() {
	u.IsEmailVerified = true
	u.VerificationToken = nil
	u.VerificationTokenExpiry = nil
}

// TokenExpired reports whether the outstanding token is unusable at now.
// An expiry equal to now counts as expired; a missing expiry always does.
func (u *User) TokenExpired(now time.Time) bool {
	if u.VerificationTokenExpiry == nil {
		return true
	}
	return !u.VerificationTokenExpiry.After(now)
}
