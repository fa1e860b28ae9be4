// Package redisstore provides a Redis-backed digest queue implementing
// notify.DigestStorage. It suits deployments that want digest batching
// without putting queue churn through the primary database.
//
// Usage:
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	queue := redisstore.NewDigestQueue(client)
//
//	manager, err := notify.NewManager(store, dispatchers,
//		notify.WithDigestStorage(queue),
//	)
package redisstore
