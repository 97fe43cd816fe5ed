// Package config resolves the service's runtime configuration from its
// environment.
//
// This package manages:
//   - Validating environment variables against a typed schema
//   - Defaults for optional settings (log level, rotation format and frequency)
//   - Deriving CORS, JWT and bearer-token settings
//   - Loading TLS material (PEM cert/key or PKCS#12 bundle) from disk
//   - Describing log file rotation for the logging package
//
// Input is an explicit Environment value. Nothing here reads or writes the
// process environment except FromOS.
//
// Failure Behaviour:
//   - A schema violation returns *ValidationError listing every problem
//   - A malformed JSON list returns *MalformedListError
//   - An unreadable TLS file returns *TLSMaterialError; the service does not
//     fall back to plain HTTP
//
// Usage:
//
//	env, err := config.FromOS().WithDotenv(".env")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cfg, err := config.Resolve(ctx, env)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Network.Port)
package config
