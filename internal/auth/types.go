package auth

import "errors"

// Sentinel errors for auth operations.
var (
	ErrTokenMissing     = errors.New("missing bearer token")
	ErrTokenInvalid     = errors.New("invalid token")
	ErrTokenTooOld      = errors.New("token exceeds maximum age")
	ErrUnknownKey       = errors.New("signing key not found in JWKS")
	ErrJWKSUnavailable  = errors.New("JWKS endpoint unavailable")
	ErrInvalidMaxAge    = errors.New("invalid JWT max age")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// Claims are the registered claims of a verified token plus any private
// claims, keyed by name.
type Claims struct {
	Subject   string
	Issuer    string
	Audience  []string
	Extra     map[string]any
	Mechanism Mechanism
}

// Mechanism records how a request was authenticated.
type Mechanism string

// Supported mechanisms.
const (
	MechanismBearer Mechanism = "bearer"
	MechanismJWT    Mechanism = "jwt"
)
