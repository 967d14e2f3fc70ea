package auth

import (
	"github.com/golang-jwt/jwt/v5"

	log "github.com/cloudposse/hcloud-projects/pkg/logger"
)

// logIDTokenClaims logs non-sensitive claims of an id_token. The signature, expiry and nonce are not checked:
// the token is only forwarded to the API, which validates it.
func logIDTokenClaims(idToken string) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		log.Debug("Could not decode id_token claims", "error", err)
		return
	}

	issuer, _ := claims.GetIssuer()
	subject, _ := claims.GetSubject()
	expiresAt, _ := claims.GetExpirationTime()
	if expiresAt != nil {
		log.Debug("Received id_token", "issuer", issuer, "subject", subject, "expires_at", expiresAt.Time)
		return
	}
	log.Debug("Received id_token", "issuer", issuer, "subject", subject)
}
