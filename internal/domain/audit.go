package domain

import "time"

// Audit statuses.
const (
	AuditOK     = "OK"
	AuditFailed = "FAILED"
)

// AuditEntry records one mutation of a persisted blob.
type AuditEntry struct {
	ID        string    `json:"id"`
	Principal string    `json:"principal"`
	Action    string    `json:"action"`
	Key       string    `json:"key"`
	Detail    string    `json:"detail,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditFilter narrows an audit listing.
type AuditFilter struct {
	Action *string
	Key    *string
	Since  *time.Time
	Page   PageRequest
}
