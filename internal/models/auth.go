package models

import "github.com/golang-jwt/jwt/v5"

// OrgClaims are the bearer-token claims this core cares about: the
// organization scope and the acting user. Token issuance is external.
type OrgClaims struct {
	UserID string `json:"user_id"`
	OrgID  string `json:"org_id"`
	jwt.RegisteredClaims
}
