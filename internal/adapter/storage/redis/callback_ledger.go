package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// CallbackLedger implements ports.CallbackLedger using Redis SET NX.
type CallbackLedger struct {
	client *goredis.Client
	prefix string
}

// NewCallbackLedger creates a Redis-backed callback ledger.
func NewCallbackLedger(client *goredis.Client) *CallbackLedger {
	return &CallbackLedger{
		client: client,
		prefix: "nps:callback:",
	}
}

// MarkReceived records merchantTxnID and reports whether it was new.
func (l *CallbackLedger) MarkReceived(ctx context.Context, merchantTxnID string, ttl time.Duration) (bool, error) {
	result, err := l.client.SetArgs(ctx, l.prefix+merchantTxnID, time.Now().Unix(), goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis callback mark: %w", err)
	}
	return result == "OK", nil
}
