package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// summary is the redacted view of Config written by Summary.
type summary struct {
	Production bool   `yaml:"production"`
	Listen     string `yaml:"listen"`
	TLS        string `yaml:"tls"`
	Logging    struct {
		Level    string              `yaml:"level"`
		Rotation *RotationDescriptor `yaml:"rotation,omitempty"`
	} `yaml:"logging"`
	CORS struct {
		Origin         string  `yaml:"origin"`
		Methods        *string `yaml:"methods,omitempty"`
		AllowedHeaders *string `yaml:"allowed_headers,omitempty"`
		ExposedHeaders *string `yaml:"exposed_headers,omitempty"`
	} `yaml:"cors"`
	JWT struct {
		JWKSEndpoint      *string  `yaml:"jwks_endpoint,omitempty"`
		AllowedAudiences  *string  `yaml:"allowed_audiences,omitempty"`
		AllowedAlgorithms []string `yaml:"allowed_algorithms,omitempty"`
		AllowedIssuers    *string  `yaml:"allowed_issuers,omitempty"`
		MaxAge            *string  `yaml:"max_age,omitempty"`
	} `yaml:"jwt"`
	BearerTokens int     `yaml:"bearer_tokens"`
	RedirectURL  *string `yaml:"redirect_url,omitempty"`
}

// Summary renders c as YAML with secrets removed: bearer tokens are counted,
// TLS material is reduced to its kind.
func Summary(c *Config) ([]byte, error) {
	var s summary
	s.Production = c.IsProduction
	s.Listen = fmt.Sprintf("%s:%d", c.Network.Host, c.Network.Port)
	s.TLS = TLSKind(c.TLS)
	s.Logging.Level = c.Logging.Level
	s.Logging.Rotation = c.Logging.Rotation
	s.CORS.Origin = c.CORS.Origin.String()
	s.CORS.Methods = c.CORS.Methods
	s.CORS.AllowedHeaders = c.CORS.AllowedHeaders
	s.CORS.ExposedHeaders = c.CORS.ExposedHeaders
	s.JWT.JWKSEndpoint = c.JWT.JWKSEndpoint
	s.JWT.AllowedAudiences = c.JWT.AllowedAudiences
	s.JWT.AllowedAlgorithms = c.JWT.AllowedAlgorithms
	s.JWT.AllowedIssuers = c.JWT.AllowedIssuers
	s.JWT.MaxAge = c.JWT.MaxAge
	s.BearerTokens = c.AuthKeys.Len()
	s.RedirectURL = c.RedirectURL

	out, err := yaml.Marshal(&s)
	if err != nil {
		return nil, fmt.Errorf("encoding config summary: %w", err)
	}
	return out, nil
}

// TLSKind names the TLS branch in effect: "none", "cert_key" or "pfx".
func TLSKind(m TLSMaterial) string {
	switch m.(type) {
	case *CertKeyPair:
		return "cert_key"
	case *PFXBundle:
		return "pfx"
	default:
		return "none"
	}
}
