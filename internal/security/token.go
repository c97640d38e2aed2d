package security

import (
	"time"

	"github.com/google/uuid"
)

// Token scopes. Catalog writes accept access tokens only.
const (
	TokenScopeAccess  = "access"
	TokenScopeRefresh = "refresh"
)

// Verifier checks tokens minted by the identity service that shares our key.
type Verifier interface {
	// VerifyToken returns the decrypted payload, ErrInvalidToken or ErrExpiredToken.
	VerifyToken(token string) (*Payload, error)
}

// Maker can also mint tokens. The API only verifies; cmd/token mints
// operator tokens for local and staging use.
type Maker interface {
	Verifier
	CreateToken(userID uuid.UUID, role string, duration time.Duration, scope string) (string, *Payload, error)
}
