package shared

import "context"

// AuditRecorder is a write-only sink for state-changing actions.
// Implementations must never fail a business operation: recording errors
// are logged and swallowed at the boundary.
type AuditRecorder interface {
	// Record appends an audit entry. Actor identifies who performed the
	// action ("customer:<id>", "admin:<id>", "system"), resource what was
	// acted on ("order:<id>"), and details is free-form structured data.
	Record(ctx context.Context, action, actor, resource string, details map[string]interface{})
}
