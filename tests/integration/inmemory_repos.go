package integration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"nps-merchant-gateway/internal/core/domain"
)

// --- In-Memory Credential Repo ---

type inMemoryCredentialRepo struct {
	mu     sync.Mutex
	cred   *domain.Credential
	nextID int64
}

func newInMemoryCredentialRepo() *inMemoryCredentialRepo {
	return &inMemoryCredentialRepo{nextID: 1}
}

func (r *inMemoryCredentialRepo) Create(ctx context.Context, c *domain.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cred != nil {
		return domain.ErrCredentialExists
	}
	now := time.Now().UTC()
	c.ID = r.nextID
	c.CreatedAt = now
	c.UpdatedAt = now
	r.nextID++
	stored := *c
	r.cred = &stored
	return nil
}

func (r *inMemoryCredentialRepo) Get(ctx context.Context) (*domain.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cred == nil {
		return nil, nil
	}
	c := *r.cred
	return &c, nil
}

func (r *inMemoryCredentialRepo) GetByID(ctx context.Context, id int64) (*domain.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cred == nil || r.cred.ID != id {
		return nil, nil
	}
	c := *r.cred
	return &c, nil
}

func (r *inMemoryCredentialRepo) Update(ctx context.Context, c *domain.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cred == nil || r.cred.ID != c.ID {
		return fmt.Errorf("no such row")
	}
	c.UpdatedAt = time.Now().UTC()
	stored := *c
	r.cred = &stored
	return nil
}

func (r *inMemoryCredentialRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cred == nil {
		return 0, nil
	}
	return 1, nil
}

// --- In-Memory Audit Repo ---

type inMemoryAuditRepo struct {
	mu      sync.Mutex
	entries []domain.AuditLog
}

func (r *inMemoryAuditRepo) Create(ctx context.Context, l *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *l)
	return nil
}

func (r *inMemoryAuditRepo) actions() []domain.AuditAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AuditAction, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}
