// Package log defines shared field names for structured logging so log lines
// stay greppable across the codebase.
package log

// Common field names for structured logging
const (
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldUserID     = "user_id"
	FieldEvent      = "event"
	FieldCacheKey   = "cache_key"
)
