package config

import (
	"context"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestSummary_RedactsSecrets(t *testing.T) {
	env := withVars(minimalEnv(),
		"AUTH_BEARER_TOKEN_ARRAY", `[{"value":"super-secret-token"}]`,
		"CORS_ORIGIN", "true",
		"LOG_ROTATION_FILENAME", "app.log",
	)
	cfg, err := Resolve(context.Background(), env)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	out, err := Summary(cfg)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if strings.Contains(string(out), "super-secret-token") {
		t.Errorf("Summary() leaked a bearer token:\n%s", out)
	}

	var decoded map[string]any
	if err := yaml.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("Summary() produced invalid YAML: %v", err)
	}
	if decoded["listen"] != "127.0.0.1:8204" {
		t.Errorf("listen = %v, want 127.0.0.1:8204", decoded["listen"])
	}
	if decoded["bearer_tokens"] != 1 {
		t.Errorf("bearer_tokens = %v, want 1", decoded["bearer_tokens"])
	}
	if decoded["tls"] != "none" {
		t.Errorf("tls = %v, want none", decoded["tls"])
	}
	logging, _ := decoded["logging"].(map[string]any)
	rotation, _ := logging["rotation"].(map[string]any)
	if rotation["date_format"] != "YYYY-MM-DD" {
		t.Errorf("logging.rotation.date_format = %v, want YYYY-MM-DD", rotation["date_format"])
	}
}

func TestTLSKind(t *testing.T) {
	tests := []struct {
		material TLSMaterial
		want     string
	}{
		{material: nil, want: "none"},
		{material: &CertKeyPair{}, want: "cert_key"},
		{material: &PFXBundle{}, want: "pfx"},
	}
	for _, tt := range tests {
		if got := TLSKind(tt.material); got != tt.want {
			t.Errorf("TLSKind(%T) = %q, want %q", tt.material, got, tt.want)
		}
	}
}
