package config

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for configuration resolution.
//
// Every error returned by Resolve matches exactly one of these with errors.Is:
//
//	if errors.Is(err, config.ErrTLSMaterial) {
//	    // certificate or key file could not be read
//	}
var (
	// ErrValidation indicates the environment does not satisfy the schema.
	ErrValidation = errors.New("config: invalid environment")

	// ErrMalformedList indicates a JSON list variable could not be decoded.
	ErrMalformedList = errors.New("config: malformed list")

	// ErrTLSMaterial indicates a TLS certificate, key or PFX file could not be read.
	ErrTLSMaterial = errors.New("config: tls material unreadable")
)

// ValidationError lists every schema violation found in one pass.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration errors: %s", strings.Join(e.Problems, "; "))
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// MalformedListError is returned when a JSON-array environment variable is
// present but is not valid JSON or does not have the expected shape.
type MalformedListError struct {
	Variable string
	Reason   string
	Err      error
}

func (e *MalformedListError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Variable, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Variable, e.Reason)
}

// Is reports whether target is ErrMalformedList.
func (e *MalformedListError) Is(target error) bool {
	return target == ErrMalformedList
}

func (e *MalformedListError) Unwrap() error {
	return e.Err
}

// TLSMaterialError carries the path of the TLS file that failed to load.
type TLSMaterialError struct {
	Path     string
	Material string // "SSL cert/key" or "PFX file"
	Err      error
}

func (e *TLSMaterialError) Error() string {
	return fmt.Sprintf("reading %s %s: %v; refusing to start without TLS", e.Material, e.Path, e.Err)
}

// Is reports whether target is ErrTLSMaterial.
func (e *TLSMaterialError) Is(target error) bool {
	return target == ErrTLSMaterial
}

func (e *TLSMaterialError) Unwrap() error {
	return e.Err
}
