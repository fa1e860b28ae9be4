package redisstore

import (
	"context"

	redispkg "github.com/medbillhq/notifykit/pkg/redis"
)

// Connect dials Redis using the shared connection helper and returns a ready
// DigestQueue together with the underlying client so callers can close it.
func Connect(ctx context.Context, cfg redispkg.Config, opts ...DigestQueueOption) (*DigestQueue, func() error, error) {
	client, err := redispkg.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	return NewDigestQueue(client, opts...), client.Close, nil
}
