package ports

import (
	"context"

	"nps-merchant-gateway/internal/core/domain"
)

// CredentialRepository persists the single NPS credential record.
// Get and GetByID return (nil, nil) when nothing matches.
type CredentialRepository interface {
	// Create inserts the record and fills ID and timestamps.
	// Returns domain.ErrCredentialExists if a record is already stored.
	Create(ctx context.Context, cred *domain.Credential) error
	Get(ctx context.Context) (*domain.Credential, error)
	GetByID(ctx context.Context, id int64) (*domain.Credential, error)
	Update(ctx context.Context, cred *domain.Credential) error
	Count(ctx context.Context) (int64, error)
}

// AuditRepository persists audit log entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}
