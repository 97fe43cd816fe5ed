package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// Validated is the typed projection of an Environment after schema checks.
//
// Required fields are always populated. Optional fields without a default
// are nil when the variable is absent or empty.
type Validated struct {
	NodeEnv     string  `env:"NODE_ENV,required,notEmpty"`
	ServiceHost string  `env:"SERVICE_HOST,required,notEmpty"`
	ServicePort int     `env:"SERVICE_PORT,required,notEmpty" validate:"min=1,max=65535"`
	RedirectURL *string `env:"SERVICE_REDIRECT_URL"`

	PFXPassphrase *string `env:"HTTPS_PFX_PASSPHRASE"`
	PFXFilePath   *string `env:"HTTPS_PFX_FILE_PATH"`
	SSLCertPath   *string `env:"HTTPS_SSL_CERT_PATH"`
	SSLKeyPath    *string `env:"HTTPS_SSL_KEY_PATH"`

	CORSOrigin         *string `env:"CORS_ORIGIN"`
	CORSMethods        *string `env:"CORS_METHODS"`
	CORSAllowedHeaders *string `env:"CORS_ALLOWED_HEADERS"`
	CORSExposedHeaders *string `env:"CORS_EXPOSED_HEADERS"`

	LogLevel           string  `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=fatal error warn info debug trace silent"`
	RotationDateFormat string  `env:"LOG_ROTATION_DATE_FORMAT" envDefault:"YYYY-MM-DD"`
	RotationFilename   *string `env:"LOG_ROTATION_FILENAME"`
	RotationFrequency  string  `env:"LOG_ROTATION_FREQUENCY" envDefault:"daily" validate:"oneof=custom daily test"`
	RotationMaxLogs    *string `env:"LOG_ROTATION_MAX_LOGS"`
	RotationMaxSize    *string `env:"LOG_ROTATION_MAX_SIZE"`

	// RotationMaxLogLegacy is the key the rotation descriptor actually reads
	// its retention count from. It is not part of the documented schema.
	// TODO: switch BuildLogStream to RotationMaxLogs once deployments have
	// confirmed LOG_ROTATION_MAX_LOGS is the intended key.
	RotationMaxLogLegacy *string `env:"LOG_ROTATION_MAX_LOG"`

	AuthBearerTokenArray *string `env:"AUTH_BEARER_TOKEN_ARRAY"`

	JWKSEndpoint        *string `env:"JWKS_ENDPOINT" validate:"omitempty,uri"`
	JWTAllowedAudience  *string `env:"JWT_ALLOWED_AUDIENCE"`
	JWTAllowedAlgoArray *string `env:"JWT_ALLOWED_ALGO_ARRAY"`
	JWTAllowedIssuers   *string `env:"JWT_ALLOWED_ISSUERS"`
	JWTMaxAge           *string `env:"JWT_MAX_AGE"`
}

var (
	validate   = newValidator()
	schemaKeys = envKeysByField(reflect.TypeOf(Validated{}))
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report failures by environment variable name rather than Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("env"), ",")
		return name
	})
	return v
}

// envKeysByField maps Go field names to their environment variable keys.
func envKeysByField(t reflect.Type) map[string]string {
	keys := make(map[string]string, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("env"), ",")
		if name != "" {
			keys[f.Name] = name
		}
	}
	return keys
}

// Validate checks env against the schema and applies defaults.
//
// It reports every problem it finds, not just the first: missing required
// variables, values that do not parse as their declared type, and values
// outside their enum or format. The returned error is a *ValidationError.
func Validate(environ Environment) (*Validated, error) {
	if environ == nil {
		// A nil map makes the decoder fall back to os.Environ.
		environ = Environment{}
	}

	v := &Validated{}
	var problems []string
	var failed []string

	if err := env.ParseWithOptions(v, env.Options{Environment: environ}); err != nil {
		var agg env.AggregateError
		if errors.As(err, &agg) {
			for _, e := range agg.Errors {
				field, msg := describeEnvError(e)
				if field != "" {
					failed = append(failed, field)
				}
				problems = append(problems, msg)
			}
		} else {
			problems = append(problems, err.Error())
		}
	}

	// Fields that already failed decoding hold zero values; skip them so a
	// missing port is not also reported as out of range.
	if err := validate.StructExcept(v, failed...); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, fmt.Errorf("validating environment: %w", err)
		}
		for _, fe := range verrs {
			problems = append(problems, describeFieldError(fe))
		}
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	return v, nil
}

// describeEnvError returns the Go field that failed (if known) and a message
// keyed by environment variable name.
func describeEnvError(err error) (string, string) {
	var notSet env.VarIsNotSetError
	if errors.As(err, &notSet) {
		return fieldForKey(notSet.Key), fmt.Sprintf("%s: required environment variable is not set", notSet.Key)
	}
	var empty env.EmptyVarError
	if errors.As(err, &empty) {
		return fieldForKey(empty.Key), fmt.Sprintf("%s: must not be empty", empty.Key)
	}
	var parse env.ParseError
	if errors.As(err, &parse) {
		key := schemaKeys[parse.Name]
		return parse.Name, fmt.Sprintf("%s: must be of type %s: %v", key, parse.Type, parse.Err)
	}
	return "", err.Error()
}

func fieldForKey(key string) string {
	for field, k := range schemaKeys {
		if k == key {
			return field
		}
	}
	return ""
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s: must be one of [%s], got %q", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "), fmt.Sprint(fe.Value()))
	case "uri":
		return fmt.Sprintf("%s: must be a URI", fe.Field())
	case "min", "max":
		return fmt.Sprintf("%s: must be between 1 and 65535, got %v", fe.Field(), fe.Value())
	default:
		return fmt.Sprintf("%s: failed %q check", fe.Field(), fe.Tag())
	}
}
