// Package redis wraps go-redis with a retrying Connect and a readiness probe.
// Configuration comes from REDIS_* environment variables; see Config.
package redis
