package postgres

import (
	"context"
	"fmt"
	"time"
)

const defaultPingTimeout = 2 * time.Second

// HealthCheck confirms the database answers and the credential table exists,
// so a pool pointed at an unmigrated database reports unhealthy.
type HealthCheck struct {
	pool    Pool
	timeout time.Duration
}

func NewHealthCheck(pool Pool) *HealthCheck {
	return &HealthCheck{pool: pool, timeout: defaultPingTimeout}
}

// WithTimeout overrides the per-ping bound.
func (h *HealthCheck) WithTimeout(d time.Duration) *HealthCheck {
	h.timeout = d
	return h
}

func (h *HealthCheck) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	if _, err := h.pool.Exec(ctx, "SELECT 1 FROM nps_credentials LIMIT 1"); err != nil {
		return fmt.Errorf("credential store unavailable: %w", err)
	}
	return nil
}

func (h *HealthCheck) Name() string {
	return "postgresql"
}
