package main

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nerrad567/fhir-auth-service/internal/infrastructure/config"
)

func minimalEnv() config.Environment {
	return config.Environment{
		"NODE_ENV":     "development",
		"SERVICE_HOST": "127.0.0.1",
		"SERVICE_PORT": "8204",
		"LOG_LEVEL":    "silent",
	}
}

// noEnvFile points --env-file at a path that does not exist.
func noEnvFile(t *testing.T) string {
	t.Helper()
	return "--env-file=" + filepath.Join(t.TempDir(), "absent.env")
}

func TestRun_Check(t *testing.T) {
	var stdout, stderr bytes.Buffer
	env := minimalEnv()
	env["AUTH_BEARER_TOKEN_ARRAY"] = `[{"service":"a","value":"token-a"}]`
	env["CORS_ORIGIN"] = "true"

	if err := run(context.Background(), []string{"--check", noEnvFile(t)}, env, &stdout, &stderr); err != nil {
		t.Fatalf("run(--check) error = %v", err)
	}

	var summary map[string]any
	if err := yaml.Unmarshal(stdout.Bytes(), &summary); err != nil {
		t.Fatalf("summary is not YAML: %v\n%s", err, stdout.String())
	}
	if summary["listen"] != "127.0.0.1:8204" {
		t.Errorf("listen = %v, want 127.0.0.1:8204", summary["listen"])
	}
	if strings.Contains(stdout.String(), "token-a") {
		t.Error("summary leaks bearer token value")
	}
}

func TestRun_CheckWarnings(t *testing.T) {
	var stdout, stderr bytes.Buffer
	env := minimalEnv()
	env["HTTPS_SSL_CERT_PATH"] = "/only/half/configured.pem"

	if err := run(context.Background(), []string{"--check", noEnvFile(t)}, env, &stdout, &stderr); err != nil {
		t.Fatalf("run(--check) error = %v", err)
	}
	if !strings.Contains(stderr.String(), "warning:") {
		t.Errorf("stderr = %q, want a warning", stderr.String())
	}
}

func TestRun_InvalidEnvironment(t *testing.T) {
	var stdout, stderr bytes.Buffer
	env := minimalEnv()
	delete(env, "SERVICE_PORT")

	err := run(context.Background(), []string{"--check", noEnvFile(t)}, env, &stdout, &stderr)
	if !errors.Is(err, config.ErrValidation) {
		t.Fatalf("run() error = %v, want ErrValidation", err)
	}
	if !strings.Contains(err.Error(), "SERVICE_PORT") {
		t.Errorf("error %q does not name SERVICE_PORT", err)
	}
}

func TestRun_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "NODE_ENV=production\nSERVICE_HOST=0.0.0.0\nSERVICE_PORT=9000\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	// The process environment wins over the file.
	env := config.Environment{"SERVICE_PORT": "9100"}
	if err := run(context.Background(), []string{"--check", "--env-file", path}, env, &stdout, &stderr); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	var summary map[string]any
	if err := yaml.Unmarshal(stdout.Bytes(), &summary); err != nil {
		t.Fatalf("summary is not YAML: %v", err)
	}
	if summary["listen"] != "0.0.0.0:9100" {
		t.Errorf("listen = %v, want 0.0.0.0:9100", summary["listen"])
	}
	if summary["production"] != true {
		t.Errorf("production = %v, want true", summary["production"])
	}
}

func TestRun_Flags(t *testing.T) {
	var stdout, stderr bytes.Buffer

	if err := run(context.Background(), []string{"--version"}, nil, &stdout, &stderr); err != nil {
		t.Fatalf("run(--version) error = %v", err)
	}
	if !strings.HasPrefix(stdout.String(), "fhirauth ") {
		t.Errorf("version output = %q", stdout.String())
	}

	if err := run(context.Background(), []string{"--help"}, nil, &stdout, &stderr); err != nil {
		t.Errorf("run(--help) error = %v, want nil", err)
	}
	if err := run(context.Background(), []string{"--bogus"}, nil, &stdout, &stderr); err == nil {
		t.Error("run(--bogus) should fail")
	}
	if err := run(context.Background(), []string{"extra"}, nil, &stdout, &stderr); err == nil {
		t.Error("run(extra) should fail")
	}
}

func TestRun_ServesUntilCancelled(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	env := minimalEnv()
	env["SERVICE_PORT"] = strconv.Itoa(port)

	args := []string{noEnvFile(t)}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		var stdout, stderr bytes.Buffer
		done <- run(ctx, args, env, &stdout, &stderr)
	}()

	url := "http://127.0.0.1:" + strconv.Itoa(port) + "/healthcheck"
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
			}
			break
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("server did not come up: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run() error = %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("run() did not return after cancel")
	}
}
