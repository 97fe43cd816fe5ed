package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// CORSOrigin is either a boolean switch or a literal origin string.
//
// Enabled with an empty Value means "reflect the request origin"; a non-empty
// Value is passed through verbatim and may hold a comma-separated list.
type CORSOrigin struct {
	Enabled bool
	Value   string
}

// IsLiteral reports whether the origin is a literal string rather than a bool.
func (o CORSOrigin) IsLiteral() bool {
	return o.Value != ""
}

func (o CORSOrigin) String() string {
	if o.IsLiteral() {
		return o.Value
	}
	if o.Enabled {
		return "true"
	}
	return "false"
}

// CORSConfig holds settings for the CORS middleware.
type CORSConfig struct {
	Origin         CORSOrigin
	Methods        *string
	AllowedHeaders *string
	ExposedHeaders *string
}

// JWTConfig holds settings for JWT verification. Only AllowedAlgorithms is
// parsed; the remaining fields are handed to the verifier as-is.
type JWTConfig struct {
	JWKSEndpoint      *string
	AllowedAudiences  *string
	AllowedAlgorithms []string
	AllowedIssuers    *string
	MaxAge            *string
}

// KeySet is a read-only set of bearer tokens.
type KeySet struct {
	keys map[string]struct{}
}

// NewKeySet builds a set from values, dropping duplicates.
func NewKeySet(values ...string) KeySet {
	keys := make(map[string]struct{}, len(values))
	for _, v := range values {
		keys[v] = struct{}{}
	}
	return KeySet{keys: keys}
}

// Has reports whether token is in the set.
func (s KeySet) Has(token string) bool {
	_, ok := s.keys[token]
	return ok
}

// Len returns the number of distinct tokens.
func (s KeySet) Len() int {
	return len(s.keys)
}

// Values returns the tokens in sorted order.
func (s KeySet) Values() []string {
	out := make([]string, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ParseCORSOrigin converts the CORS_ORIGIN value.
//
// "true" and "false" become booleans; any other non-empty string is kept as
// a literal origin. Unset or empty means disabled.
func ParseCORSOrigin(value *string) CORSOrigin {
	if value == nil || *value == "" {
		return CORSOrigin{}
	}
	switch *value {
	case "true":
		return CORSOrigin{Enabled: true}
	case "false":
		return CORSOrigin{}
	default:
		return CORSOrigin{Enabled: true, Value: *value}
	}
}

// BuildCORS derives CORS settings from v.
func BuildCORS(v *Validated) CORSConfig {
	return CORSConfig{
		Origin:         ParseCORSOrigin(v.CORSOrigin),
		Methods:        v.CORSMethods,
		AllowedHeaders: v.CORSAllowedHeaders,
		ExposedHeaders: v.CORSExposedHeaders,
	}
}

// BuildJWT derives JWT settings from v. It fails with *MalformedListError if
// JWT_ALLOWED_ALGO_ARRAY is set but is not a JSON array of strings.
func BuildJWT(v *Validated) (JWTConfig, error) {
	cfg := JWTConfig{
		JWKSEndpoint:     v.JWKSEndpoint,
		AllowedAudiences: v.JWTAllowedAudience,
		AllowedIssuers:   v.JWTAllowedIssuers,
		MaxAge:           v.JWTMaxAge,
	}
	if v.JWTAllowedAlgoArray != nil {
		algs, err := ParseAlgorithmList(*v.JWTAllowedAlgoArray)
		if err != nil {
			return JWTConfig{}, err
		}
		cfg.AllowedAlgorithms = algs
	}
	return cfg, nil
}

// BuildAuthKeys derives the bearer token set from v. The set is empty when
// AUTH_BEARER_TOKEN_ARRAY is unset.
func BuildAuthKeys(v *Validated) (KeySet, error) {
	if v.AuthBearerTokenArray == nil {
		return NewKeySet(), nil
	}
	return ParseBearerTokens(*v.AuthBearerTokenArray)
}

// ParseAlgorithmList decodes a JSON array of algorithm names such as
// `["RS256","ES256"]`.
func ParseAlgorithmList(raw string) ([]string, error) {
	const variable = "JWT_ALLOWED_ALGO_ARRAY"

	if err := requireArray(variable, raw); err != nil {
		return nil, err
	}
	var algs []string
	if err := json.Unmarshal([]byte(raw), &algs); err != nil {
		return nil, &MalformedListError{Variable: variable, Reason: "elements must be strings", Err: err}
	}
	return algs, nil
}

// bearerToken is one element of AUTH_BEARER_TOKEN_ARRAY.
type bearerToken struct {
	Value *string `json:"value"`
}

// ParseBearerTokens decodes a JSON array of `{"value": "..."}` objects into a
// KeySet. Repeated values collapse into one entry.
func ParseBearerTokens(raw string) (KeySet, error) {
	const variable = "AUTH_BEARER_TOKEN_ARRAY"

	if err := requireArray(variable, raw); err != nil {
		return KeySet{}, err
	}
	var elems []bearerToken
	if err := json.Unmarshal([]byte(raw), &elems); err != nil {
		return KeySet{}, &MalformedListError{Variable: variable, Reason: "elements must be objects with a string value", Err: err}
	}

	values := make([]string, 0, len(elems))
	for i, el := range elems {
		if el.Value == nil {
			return KeySet{}, &MalformedListError{Variable: variable, Reason: fmt.Sprintf("element %d has no string \"value\" field", i)}
		}
		// A blank key enables auth but no request can present it.
		if strings.TrimSpace(*el.Value) == "" {
			return KeySet{}, &MalformedListError{Variable: variable, Reason: fmt.Sprintf("element %d has an empty \"value\"", i)}
		}
		values = append(values, *el.Value)
	}
	return NewKeySet(values...), nil
}

// requireArray checks raw is syntactically valid JSON whose top level is an array.
func requireArray(variable, raw string) error {
	data := bytes.TrimSpace([]byte(raw))
	if !json.Valid(data) {
		return &MalformedListError{Variable: variable, Reason: "not valid JSON"}
	}
	if len(data) == 0 || data[0] != '[' {
		return &MalformedListError{Variable: variable, Reason: "not a JSON array"}
	}
	return nil
}
