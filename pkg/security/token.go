package security

import (
	"fmt"
	"net/url"

	"github.com/google/uuid"
)

// TokenGenerator produces opaque, practically unguessable tokens.
type TokenGenerator func() (string, error)

// NewVerificationToken returns a random UUIDv4 rendered in its canonical text form.
func NewVerificationToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate verification token: %w", err)
	}
	return id.String(), nil
}

// VerificationLink embeds token as the "token" query parameter of baseURL,
// keeping any query parameters baseURL already carries.
func VerificationLink(baseURL, token string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid verification base url: %w", err)
	}

	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	return u.String(), nil
}
