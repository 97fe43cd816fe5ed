package api

import (
	"net/http"

	"gopkg.in/yaml.v3"
)

// OpenAPI document types. Only the parts this service publishes are modelled.
type (
	openAPIDoc struct {
		OpenAPI    string                         `json:"openapi" yaml:"openapi"`
		Info       openAPIInfo                    `json:"info" yaml:"info"`
		Tags       []openAPITag                   `json:"tags" yaml:"tags"`
		Paths      map[string]map[string]*opEntry `json:"paths" yaml:"paths"`
		Components *openAPIComponents             `json:"components,omitempty" yaml:"components,omitempty"`
	}

	openAPIInfo struct {
		Title       string         `json:"title" yaml:"title"`
		Description string         `json:"description" yaml:"description"`
		Version     string         `json:"version" yaml:"version"`
		Contact     openAPIContact `json:"contact" yaml:"contact"`
		License     openAPILicense `json:"license" yaml:"license"`
	}

	openAPIContact struct {
		Name  string `json:"name" yaml:"name"`
		Email string `json:"email" yaml:"email"`
	}

	openAPILicense struct {
		Name string `json:"name" yaml:"name"`
		URL  string `json:"url" yaml:"url"`
	}

	openAPITag struct {
		Name        string `json:"name" yaml:"name"`
		Description string `json:"description" yaml:"description"`
	}

	opEntry struct {
		Tags        []string                   `json:"tags" yaml:"tags"`
		Summary     string                     `json:"summary" yaml:"summary"`
		Security    []map[string][]string      `json:"security,omitempty" yaml:"security,omitempty"`
		Responses   map[string]openAPIResponse `json:"responses" yaml:"responses"`
		Description string                     `json:"description,omitempty" yaml:"description,omitempty"`
	}

	openAPIResponse struct {
		Description string `json:"description" yaml:"description"`
	}

	openAPIComponents struct {
		SecuritySchemes map[string]openAPISecurityScheme `json:"securitySchemes" yaml:"securitySchemes"`
	}

	openAPISecurityScheme struct {
		Type         string `json:"type" yaml:"type"`
		Scheme       string `json:"scheme" yaml:"scheme"`
		BearerFormat string `json:"bearerFormat,omitempty" yaml:"bearerFormat,omitempty"`
	}
)

// Tag names.
const (
	tagRedirects = "Redirects"
	tagSystem    = "System Administration"
)

// openAPI describes the routes registered by buildRouter.
func (s *Server) openAPI() openAPIDoc {
	doc := openAPIDoc{
		OpenAPI: "3.0.3",
		Info: openAPIInfo{
			Title:       "FHIR Authentication Service",
			Description: "Authentication and redirect service placed in front of a FHIR API",
			Version:     s.version,
			Contact: openAPIContact{
				Name:  "Solutions Development Team",
				Email: "servicedesk@ydh.nhs.uk",
			},
			License: openAPILicense{
				Name: "MIT",
				URL:  "https://raw.githubusercontent.com/Fdawgs/ydh-fhir-authentication-service/master/LICENSE",
			},
		},
		Tags: []openAPITag{
			{Name: tagRedirects, Description: "Endpoints relating to redirection to FHIR listener"},
			{Name: tagSystem, Description: ""},
		},
		Paths: map[string]map[string]*opEntry{
			"/healthcheck": {
				"get": {
					Tags:      []string{tagSystem},
					Summary:   "Check the service is up",
					Responses: map[string]openAPIResponse{"200": {Description: "Service is healthy"}},
				},
			},
			"/redirect/{path}": {
				"get": {
					Tags:        []string{tagRedirects},
					Summary:     "Redirect to the configured target",
					Description: "Responds with 307 to SERVICE_REDIRECT_URL followed by the remaining path and query string",
					Responses: map[string]openAPIResponse{
						"307": {Description: "Temporary redirect"},
						"401": {Description: "Missing or invalid bearer token"},
					},
				},
			},
		},
	}

	if s.authn.Enabled() {
		doc.Paths["/redirect/{path}"]["get"].Security = []map[string][]string{{"bearerAuth": {}}}
		doc.Components = &openAPIComponents{
			SecuritySchemes: map[string]openAPISecurityScheme{
				"bearerAuth": {Type: "http", Scheme: "bearer", BearerFormat: "JWT"},
			},
		}
	}
	return doc
}

// handleOpenAPI serves the OpenAPI document as JSON.
func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.openAPI())
}

// handleOpenAPIYAML serves the OpenAPI document as YAML.
func (s *Server) handleOpenAPIYAML(w http.ResponseWriter, r *http.Request) {
	out, err := yaml.Marshal(s.openAPI())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, ErrCodeInternal, "encoding OpenAPI document")
		return
	}
	w.Header().Set("Content-Type", "application/x-yaml")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // Best-effort write to response; connection may be closed
	w.Write(out)
}
