package security

import (
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Principal is the validated caller identity handed to every core operation.
// The core never re-validates tokens; it trusts the principal it is given.
type Principal struct {
	UserID      string
	DisplayName string
	UPN         string
	Roles       []string
}

// IdentityClaims is the token payload: display identity plus the standard
// registered claims (subject carries the user ID).
type IdentityClaims struct {
	Name  string   `json:"name"`
	UPN   string   `json:"upn,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Principal converts the claims into the identity the services consume.
func (c *IdentityClaims) Principal() Principal {
	return Principal{
		UserID:      c.Subject,
		DisplayName: c.Name,
		UPN:         c.UPN,
		Roles:       c.Roles,
	}
}

// CreateIdentityToken mints an HS256 bearer token for the principal. Used by
// the createtoken command and the handler tests.
func CreateIdentityToken(p *Principal, base64Secret string, expiresInSeconds int64) (string, error) {
	secretBytes, err := base64.StdEncoding.DecodeString(base64Secret)
	if err != nil {
		return "", err
	}

	claims := IdentityClaims{
		Name:  p.DisplayName,
		UPN:   p.UPN,
		Roles: p.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			Issuer:    "checkinblaze",
			Audience:  []string{"api://checkinblaze"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(expiresInSeconds) * time.Second)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretBytes)
}
