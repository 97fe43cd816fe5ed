package config

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Config is the resolved runtime configuration.
//
// It is built once by Resolve at startup and shared read-only by the HTTP
// server, its middleware and the logger. Nothing mutates it afterwards.
type Config struct {
	IsProduction bool
	Network      NetworkConfig
	Logging      LoggingConfig
	CORS         CORSConfig
	JWT          JWTConfig
	AuthKeys     KeySet
	TLS          TLSMaterial // nil for plain HTTP
	RedirectURL  *string

	// Warnings are non-fatal observations the caller should log at startup.
	Warnings []string
}

// NetworkConfig is the listener address.
type NetworkConfig struct {
	Host string
	Port int
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level    string
	Rotation *RotationDescriptor // nil logs to stdout
}

// Resolve validates env and assembles a Config.
//
// The environment is validated first. CORS/JWT/bearer derivation, TLS file
// loading and rotation descriptor assembly then run concurrently, and no
// partial Config is returned on failure. When several stages fail the error
// reported is the one a sequential run would hit first: derived settings
// (algorithm list, then bearer tokens), then TLS material.
//
// Parameters:
//   - ctx: Cancels pending TLS file reads when a sibling stage fails
//   - env: Raw environment; never modified
//
// Returns:
//   - *Config: Fully resolved configuration
//   - error: *ValidationError, *MalformedListError or *TLSMaterialError
func Resolve(ctx context.Context, env Environment) (*Config, error) {
	v, err := Validate(env)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		IsProduction: v.NodeEnv == "production",
		Network: NetworkConfig{
			Host: v.ServiceHost,
			Port: v.ServicePort,
		},
		Logging: LoggingConfig{
			Level: v.LogLevel,
		},
		RedirectURL: v.RedirectURL,
		Warnings:    warnings(v),
	}

	g, gctx := errgroup.WithContext(ctx)

	// Stage errors are kept by position so the reported failure does not
	// depend on scheduling.
	var stageErrs [2]error
	stage := func(i int, fn func() error) func() error {
		return func() error {
			stageErrs[i] = fn()
			return stageErrs[i]
		}
	}

	// Each stage writes only its own fields of cfg.
	g.Go(stage(0, func() error {
		cfg.CORS = BuildCORS(v)
		jwt, err := BuildJWT(v)
		if err != nil {
			return err
		}
		keys, err := BuildAuthKeys(v)
		if err != nil {
			return err
		}
		cfg.JWT = jwt
		cfg.AuthKeys = keys
		return nil
	}))
	g.Go(stage(1, func() error {
		material, err := LoadTLS(gctx, v)
		if err != nil {
			return err
		}
		cfg.TLS = material
		return nil
	}))
	g.Go(func() error {
		cfg.Logging.Rotation = BuildLogStream(v)
		return nil
	})

	//nolint:errcheck // stageErrs holds every stage result
	g.Wait()
	for _, err := range stageErrs {
		if err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func warnings(v *Validated) []string {
	var warns []string
	if v.RotationMaxLogs != nil && v.RotationMaxLogLegacy == nil {
		warns = append(warns, fmt.Sprintf(
			"LOG_ROTATION_MAX_LOGS=%q is not applied; log retention is read from LOG_ROTATION_MAX_LOG",
			*v.RotationMaxLogs))
	}
	if v.SSLCertPath != nil && v.PFXFilePath != nil && v.PFXPassphrase != nil && v.SSLKeyPath != nil {
		warns = append(warns, "both cert/key and PFX TLS settings are present; the PFX bundle is used")
	}
	if (v.SSLCertPath == nil) != (v.SSLKeyPath == nil) {
		warns = append(warns, "only one of HTTPS_SSL_CERT_PATH and HTTPS_SSL_KEY_PATH is set; cert/key TLS is disabled")
	}
	if (v.PFXFilePath == nil) != (v.PFXPassphrase == nil) {
		warns = append(warns, "only one of HTTPS_PFX_FILE_PATH and HTTPS_PFX_PASSPHRASE is set; PFX TLS is disabled")
	}
	return warns
}
