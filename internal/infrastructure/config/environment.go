package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment is the raw key/value input to Resolve.
//
// It is an explicit value rather than ambient process state, so callers and
// tests control exactly what the resolver sees. The resolver never writes
// to it.
type Environment map[string]string

// FromOS captures the current process environment.
func FromOS() Environment {
	vars := os.Environ()
	env := make(Environment, len(vars))
	for _, kv := range vars {
		key, val, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		env[key] = val
	}
	return env
}

// Lookup returns the value for key and whether it is set to a non-empty value.
func (e Environment) Lookup(key string) (string, bool) {
	v, ok := e[key]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// WithDotenv returns a copy of e with entries from the dotenv file at path
// added for every key that is missing or empty in e.
//
// A missing file is not an error; the copy is returned unchanged.
func (e Environment) WithDotenv(path string) (Environment, error) {
	out := make(Environment, len(e))
	for k, v := range e {
		out[k] = v
	}
	if path == "" {
		return out, nil
	}

	file, err := LoadDotenv(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return out, nil
		}
		return nil, err
	}

	for k, v := range file {
		if cur, ok := out[k]; ok && cur != "" {
			continue
		}
		out[k] = v
	}
	return out, nil
}

// LoadDotenv parses a dotenv file without touching the process environment.
func LoadDotenv(path string) (Environment, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading dotenv file %s: %w", path, err)
	}
	return Environment(vars), nil
}
