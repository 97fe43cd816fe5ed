package config

import (
	"context"
	"path/filepath"
	"testing"
)

func TestFromOS(t *testing.T) {
	t.Setenv("FHIRAUTH_TEST_VALUE", "a=b")

	env := FromOS()
	if got := env["FHIRAUTH_TEST_VALUE"]; got != "a=b" {
		t.Errorf("FromOS()[FHIRAUTH_TEST_VALUE] = %q, want %q", got, "a=b")
	}
}

func TestEnvironment_Lookup(t *testing.T) {
	env := Environment{"SET": "x", "EMPTY": ""}

	if v, ok := env.Lookup("SET"); !ok || v != "x" {
		t.Errorf("Lookup(SET) = %q, %v, want x, true", v, ok)
	}
	if _, ok := env.Lookup("EMPTY"); ok {
		t.Error("Lookup(EMPTY) ok = true, want false")
	}
	if _, ok := env.Lookup("MISSING"); ok {
		t.Error("Lookup(MISSING) ok = true, want false")
	}
}

func TestEnvironment_WithDotenv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".env", `
# service settings
NODE_ENV=development
SERVICE_HOST="0.0.0.0"
SERVICE_PORT=8204
export LOG_LEVEL=debug
CORS_ORIGIN='https://a.example'
`)

	base := Environment{"SERVICE_PORT": "9000", "LOG_LEVEL": ""}
	env, err := base.WithDotenv(path)
	if err != nil {
		t.Fatalf("WithDotenv() error = %v", err)
	}

	tests := []struct {
		key  string
		want string
	}{
		{key: "NODE_ENV", want: "development"},
		{key: "SERVICE_HOST", want: "0.0.0.0"},
		{key: "SERVICE_PORT", want: "9000"}, // existing value wins
		{key: "LOG_LEVEL", want: "debug"},   // empty value is filled
		{key: "CORS_ORIGIN", want: "https://a.example"},
	}
	for _, tt := range tests {
		if got := env[tt.key]; got != tt.want {
			t.Errorf("env[%s] = %q, want %q", tt.key, got, tt.want)
		}
	}

	if base["LOG_LEVEL"] != "" || len(base) != 2 {
		t.Errorf("WithDotenv() modified its receiver: %v", base)
	}

	cfg, err := Resolve(context.Background(), env)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.Network.Port != 9000 || cfg.Logging.Level != "debug" {
		t.Errorf("Resolve() = port %d level %q, want 9000 debug", cfg.Network.Port, cfg.Logging.Level)
	}
}

func TestEnvironment_WithDotenvMissingFile(t *testing.T) {
	base := Environment{"NODE_ENV": "production"}

	env, err := base.WithDotenv(filepath.Join(t.TempDir(), ".env"))
	if err != nil {
		t.Fatalf("WithDotenv() error = %v, want nil for missing file", err)
	}
	if env["NODE_ENV"] != "production" || len(env) != 1 {
		t.Errorf("WithDotenv() = %v, want copy of base", env)
	}
}

func TestEnvironment_WithDotenvEmptyPath(t *testing.T) {
	env, err := Environment{"A": "1"}.WithDotenv("")
	if err != nil {
		t.Fatalf("WithDotenv(\"\") error = %v", err)
	}
	if env["A"] != "1" {
		t.Errorf("env[A] = %q, want 1", env["A"])
	}
}
