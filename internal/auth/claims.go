package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/nerrad567/fhir-auth-service/internal/infrastructure/config"
)

// defaultAlgorithms applies when no algorithm allow-list is configured.
// Only asymmetric algorithms are accepted since keys come from a JWKS.
var defaultAlgorithms = []string{
	jwt.SigningMethodRS256.Alg(),
	jwt.SigningMethodRS384.Alg(),
	jwt.SigningMethodRS512.Alg(),
	jwt.SigningMethodPS256.Alg(),
	jwt.SigningMethodPS384.Alg(),
	jwt.SigningMethodPS512.Alg(),
	jwt.SigningMethodES256.Alg(),
	jwt.SigningMethodES384.Alg(),
	jwt.SigningMethodES512.Alg(),
	jwt.SigningMethodEdDSA.Alg(),
}

// keyLookupTimeout bounds a key lookup that triggers a JWKS refresh. An
// unknown kid refreshes the set at most once every five minutes; lookups that
// would wait longer than this fail instead.
const keyLookupTimeout = 5 * time.Second

// Verifier validates JWTs signed by keys published at a JWKS endpoint.
type Verifier struct {
	keys      keyfunc.Keyfunc
	parser    *jwt.Parser
	audiences []string
	issuers   []string
	maxAge    time.Duration
	now       func() time.Time
}

// NewVerifier creates a Verifier from the JWT section of the configuration.
//
// The key set is fetched once here and refreshed hourly in the background
// until ctx is cancelled. A token naming an unknown kid triggers an early,
// rate-limited refresh.
//
// Parameters:
//   - ctx: Lifetime of the background JWKS refresh
//   - cfg: JWT settings; JWKSEndpoint must be set
//
// Returns:
//   - *Verifier: Ready to verify tokens
//   - error: If the endpoint is missing or MaxAge cannot be parsed
func NewVerifier(ctx context.Context, cfg config.JWTConfig) (*Verifier, error) {
	if cfg.JWKSEndpoint == nil || *cfg.JWKSEndpoint == "" {
		return nil, fmt.Errorf("%w: JWKS endpoint is required", ErrJWKSUnavailable)
	}

	maxAge, err := ParseMaxAge(deref(cfg.MaxAge))
	if err != nil {
		return nil, err
	}

	algs := cfg.AllowedAlgorithms
	if len(algs) == 0 {
		algs = defaultAlgorithms
	}

	keys, err := keyfunc.NewDefaultCtx(ctx, []string{*cfg.JWKSEndpoint})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrJWKSUnavailable, err)
	}

	v := &Verifier{
		keys:      keys,
		audiences: splitList(deref(cfg.AllowedAudiences)),
		issuers:   splitList(deref(cfg.AllowedIssuers)),
		maxAge:    maxAge,
		now:       time.Now,
	}
	v.parser = jwt.NewParser(
		jwt.WithValidMethods(algs),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(func() time.Time { return v.now() }),
	)
	return v, nil
}

// Verify parses token and checks its signature, lifetime, audience, issuer
// and age.
func (v *Verifier) Verify(ctx context.Context, token string) (*Claims, error) {
	ctx, cancel := context.WithTimeout(ctx, keyLookupTimeout)
	defer cancel()

	claims := jwt.MapClaims{}
	_, err := v.parser.ParseWithClaims(token, claims, v.keys.KeyfuncCtx(ctx))
	if errors.Is(err, jwkset.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %w: %w", ErrTokenInvalid, ErrUnknownKey, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	audience, err := claims.GetAudience()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if len(v.audiences) > 0 && !slices.ContainsFunc(audience, func(a string) bool {
		return slices.Contains(v.audiences, a)
	}) {
		return nil, fmt.Errorf("%w: audience not allowed", ErrTokenInvalid)
	}

	issuer, _ := claims.GetIssuer()
	if len(v.issuers) > 0 && !slices.Contains(v.issuers, issuer) {
		return nil, fmt.Errorf("%w: issuer %q not allowed", ErrTokenInvalid, issuer)
	}

	if v.maxAge > 0 {
		iat, err := claims.GetIssuedAt()
		if err != nil || iat == nil {
			return nil, fmt.Errorf("%w: missing iat", ErrTokenTooOld)
		}
		if v.now().Sub(iat.Time) > v.maxAge {
			return nil, ErrTokenTooOld
		}
	}

	subject, _ := claims.GetSubject()
	return &Claims{
		Subject:   subject,
		Issuer:    issuer,
		Audience:  audience,
		Extra:     claims,
		Mechanism: MechanismJWT,
	}, nil
}

// ParseMaxAge reads a Go duration ("1h30m") or a whole number of seconds.
// An empty string means no limit.
func ParseMaxAge(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if secs, err := strconv.Atoi(s); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidMaxAge, s)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMaxAge, s)
	}
	return d, nil
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
