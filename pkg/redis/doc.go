// Package redis provides go-redis connection helpers: Connect with retries
// driven by an env-populated Config, and a health check closure. The digest
// queue in pkg/redisstore builds on the returned client.
package redis
