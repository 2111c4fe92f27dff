package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const defaultPingTimeout = 2 * time.Second

// HealthCheck reports whether the credential cache answers within a bound.
type HealthCheck struct {
	client  goredis.Cmdable
	timeout time.Duration
}

func NewHealthCheck(client goredis.Cmdable) *HealthCheck {
	return &HealthCheck{client: client, timeout: defaultPingTimeout}
}

// WithTimeout overrides the per-ping bound.
func (h *HealthCheck) WithTimeout(d time.Duration) *HealthCheck {
	h.timeout = d
	return h
}

func (h *HealthCheck) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	if err := h.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("credential cache unreachable: %w", err)
	}
	return nil
}

func (h *HealthCheck) Name() string {
	return "redis"
}
