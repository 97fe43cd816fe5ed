package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nerrad567/fhir-auth-service/internal/infrastructure/config"
)

func TestVerifier_RefreshesOnUnknownKid(t *testing.T) {
	ks := newKeyServer(t)
	v := newTestVerifier(t, ks, config.JWTConfig{})

	if got := ks.fetches.Load(); got != 1 {
		t.Fatalf("fetches after NewVerifier = %d, want 1", got)
	}

	rotated, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating RSA key: %v", err)
	}
	ks.publish(rsaJWK("rsa-2", &rotated.PublicKey))

	now := time.Now()
	token := signWith(t, jwt.SigningMethodRS256, rotated, "rsa-2", jwt.MapClaims{
		"sub": "user-2",
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	})

	claims, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify(rotated key) error = %v", err)
	}
	if claims.Subject != "user-2" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "user-2")
	}
	if got := ks.fetches.Load(); got != 2 {
		t.Errorf("fetches = %d, want 2 after unknown kid", got)
	}
}

func TestVerifier_UnavailableEndpoint(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				//nolint:errcheck // test server
				w.Write([]byte("<html>"))
			},
		},
	}

	// Tokens are signed by a key the broken endpoint never serves.
	ks := newKeyServer(t)
	now := time.Now()
	token := ks.sign(t, jwt.SigningMethodRS256, "rsa-1", jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			v, err := NewVerifier(ctx, config.JWTConfig{JWKSEndpoint: strPtr(srv.URL)})
			if err != nil {
				if !errors.Is(err, ErrJWKSUnavailable) {
					t.Errorf("NewVerifier() error = %v, want ErrJWKSUnavailable", err)
				}
				return
			}
			if _, err := v.Verify(context.Background(), token); !errors.Is(err, ErrTokenInvalid) {
				t.Errorf("Verify() error = %v, want ErrTokenInvalid", err)
			}
		})
	}
}

func TestVerifier_MissingKid(t *testing.T) {
	ks := newKeyServer(t)
	v := newTestVerifier(t, ks, config.JWTConfig{})

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(ks.rsa)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	if _, err := v.Verify(context.Background(), signed); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Verify(no kid) error = %v, want ErrTokenInvalid", err)
	}
}
