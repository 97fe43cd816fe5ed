package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/nerrad567/fhir-auth-service/internal/infrastructure/config"
)

// TokenVerifier verifies a JWT.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

// Authenticator accepts a request if its bearer token is a configured key or
// a JWT the verifier accepts.
type Authenticator struct {
	keys     config.KeySet
	verifier TokenVerifier
}

// NewAuthenticator combines static bearer keys with an optional JWT verifier.
// A nil verifier disables JWT authentication.
func NewAuthenticator(keys config.KeySet, verifier TokenVerifier) *Authenticator {
	return &Authenticator{keys: keys, verifier: verifier}
}

// Enabled reports whether any mechanism is configured. When it is not,
// protected routes are open.
func (a *Authenticator) Enabled() bool {
	return a.keys.Len() > 0 || a.verifier != nil
}

// Authenticate checks the Authorization header of r.
//
// Bearer keys are matched first; anything else is handed to the verifier.
func (a *Authenticator) Authenticate(r *http.Request) (*Claims, error) {
	token, ok := BearerToken(r)
	if !ok {
		return nil, ErrTokenMissing
	}

	if a.hasKey(token) {
		return &Claims{Mechanism: MechanismBearer}, nil
	}

	if a.verifier == nil {
		return nil, ErrNotAuthenticated
	}
	claims, err := a.verifier.Verify(r.Context(), token)
	if err != nil {
		return nil, errors.Join(ErrNotAuthenticated, err)
	}
	return claims, nil
}

// hasKey compares token against every key in constant time per key.
func (a *Authenticator) hasKey(token string) bool {
	match := 0
	for _, k := range a.keys.Values() {
		match |= subtle.ConstantTimeCompare([]byte(k), []byte(token))
	}
	return match == 1
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is case-insensitive.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
