package auth

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// IDTokenClaims holds the ID token claims used to build cached accounts.
type IDTokenClaims struct {
	jwt.RegisteredClaims

	ObjectID          string `json:"oid,omitempty"`
	TenantID          string `json:"tid,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
	UPN               string `json:"upn,omitempty"`
	Email             string `json:"email,omitempty"`
	Name              string `json:"name,omitempty"`
}

// ParseIDToken extracts the claims of a compact-serialized ID token. The
// signature is not checked. A token without sub and oid is rejected.
func ParseIDToken(raw string) (*IDTokenClaims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty token", ErrTokenMalformed)
	}

	claims := &IDTokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	if claims.Subject == "" && claims.ObjectID == "" {
		return nil, fmt.Errorf("%w: sub or oid", ErrMissingClaim)
	}
	return claims, nil
}
