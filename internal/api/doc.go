// # Routes
//
//	GET /healthcheck   liveness probe (open)
//	GET /redirect/*    307 to SERVICE_REDIRECT_URL plus the remaining path and query
//	GET /docs/json     OpenAPI 3 description of the routes above
//	GET /docs/yaml     the same document as YAML
//
// Trailing slashes are ignored.
//
// # Security
//
// /redirect/* requires a bearer key from AUTH_BEARER_TOKEN_ARRAY or a JWT
// accepted by the JWKS verifier. When neither is configured the route is open.
//
// CORS follows CORS_ORIGIN: "true" reflects the request origin, "false" or
// unset disables CORS headers, and any other value is sent verbatim (a
// comma-separated value is matched against the request origin).
package api
