package auth

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

var _ Session = &SessionObject{}

// SessionObject is the request principal resolved from an access token.
type SessionObject struct {
	UserID         string     `json:"user_id,omitempty"`
	Issuer         string     `json:"issuer,omitempty"`
	IssuedAt       *time.Time `json:"issued_at,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
}

func (s *SessionObject) GetUserID() string {
	return s.UserID
}

func (s *SessionObject) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(s.UserID)
}

func (s *SessionObject) GetIssuer() string {
	return s.Issuer
}

func (s *SessionObject) GetIssuedAt() *time.Time {
	return s.IssuedAt
}

func (s *SessionObject) GetExpiration() *time.Time {
	return s.ExpirationDate
}

func (s SessionObject) String() string {
	issuedAt := "<nil>"
	if s.IssuedAt != nil {
		issuedAt = s.IssuedAt.Format(time.RFC1123)
	}
	return fmt.Sprintf(
		"user=%s iss=%s iat=%s",
		s.UserID,
		s.Issuer,
		issuedAt,
	)
}

// SessionFromAccessClaims creates a SessionObject from verified access
// claims. Middleware outside this package uses it to publish the principal.
func SessionFromAccessClaims(claims *AccessClaims) (*SessionObject, error) {
	return sessionFromAccessClaims(claims)
}

// sessionFromAccessClaims creates a SessionObject from verified access claims.
func sessionFromAccessClaims(claims *AccessClaims) (*SessionObject, error) {
	if claims == nil {
		return nil, ErrUnableToMapClaims
	}

	session := &SessionObject{
		UserID: claims.UserID,
		Issuer: claims.Issuer,
	}

	if claims.IssuedAt != nil {
		issuedAt := claims.IssuedAt.Time
		session.IssuedAt = &issuedAt
	}

	if claims.ExpiresAt != nil {
		expiresAt := claims.ExpiresAt.Time
		session.ExpirationDate = &expiresAt
	}

	return session, nil
}
