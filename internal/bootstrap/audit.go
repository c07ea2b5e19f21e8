package bootstrap

import "context"

// AuditLog is an operational lifecycle record: which process did what,
// outside the request path. Request-path security events go to the
// security log instead.
type AuditLog struct {
	Component string
	Action    string
	Message   string
	Meta      map[string]any
}

type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}
