// Package logging provides structured logging for the FHIR authentication service.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the entire application.
//
// # Features
//
//   - JSON output with lowercase level labels
//   - Default fields (service, version) on all log entries
//   - Levels trace, debug, info, warn, error and fatal; "silent" disables output
//   - Optional date-based file rotation with size and retention limits
//   - Thread-safe for concurrent use
//
// # Configuration
//
// Logging is configured from the environment:
//
//	LOG_LEVEL=info                      # fatal, error, warn, info, debug, trace, silent
//	LOG_ROTATION_FILENAME=./logs/%DATE%-auth.log
//	LOG_ROTATION_DATE_FORMAT=YYYY-MM-DD # moment-style tokens
//	LOG_ROTATION_FREQUENCY=daily        # daily, test, custom
//	LOG_ROTATION_MAX_SIZE=10m           # k, m or g
//
// # Usage
//
//	logger, err := logging.New(cfg.Logging, "1.0.0")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//	logger.Info("starting service", "port", 8204)
//
// # Security
//
// Never log bearer tokens, JWTs, PFX passphrases or private keys.
package logging
