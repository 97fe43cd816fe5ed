// Package auth authenticates requests to protected routes.
//
// Two mechanisms are supported and either one is sufficient:
//   - Static bearer keys from AUTH_BEARER_TOKEN_ARRAY
//   - JWTs signed by a key published at JWKS_ENDPOINT, restricted by the
//     configured algorithms, audiences, issuers and maximum age
//
// When neither is configured the Authenticator reports itself disabled and
// callers leave the route open.
package auth
