package api

import (
	"encoding/json"
	"net/http"
)

// authRealm is advertised in WWW-Authenticate on 401 responses.
const authRealm = "fhir-auth-service"

// Error is the JSON body of every non-2xx response. RequestID echoes the
// X-Request-ID header so a client report can be matched to the access log.
type Error struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// Error codes.
const (
	ErrCodeNotFound       = "not_found"
	ErrCodeUnauthorized   = "unauthorised"
	ErrCodeInternal       = "internal_error"
	ErrCodeMethodNotAllow = "method_not_allowed"
	ErrCodeNotConfigured  = "not_configured"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes an Error body tagged with the request's ID.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	requestID, _ := r.Context().Value(ctxKeyRequestID).(string)
	writeJSON(w, status, Error{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: requestID,
	})
}

// writeUnauthorized rejects a request to a protected route with a bearer
// challenge. The body never says which mechanism failed.
func writeUnauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="`+authRealm+`"`)
	writeError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, "missing or invalid bearer token")
}
