package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionCredentialCreate AuditAction = "CREDENTIAL_CREATE"
	AuditActionCredentialUpdate AuditAction = "CREDENTIAL_UPDATE"
	AuditActionAdminLogin       AuditAction = "ADMIN_LOGIN"
	AuditActionInstruments      AuditAction = "INSTRUMENTS"
	AuditActionServiceCharge    AuditAction = "SERVICE_CHARGE"
	AuditActionProcessID        AuditAction = "PROCESS_ID"
	AuditActionStatusCheck      AuditAction = "STATUS_CHECK"
	AuditActionCallback         AuditAction = "GATEWAY_CALLBACK"
)

// AuditLog records a single audited action in the system.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Status       int         `json:"status"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}
