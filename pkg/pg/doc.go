// Package pg provides PostgreSQL bootstrap helpers on top of the pgx/v5
// driver: a Config populated from environment variables, Connect with
// startup retries, goose-based migrations from an embedded filesystem, and a
// health check closure.
//
// The notification stores in pkg/pgstore build on these helpers:
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil { ... }
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, migrationsFS, "migrations", cfg, slog.Default()); err != nil { ... }
package pg
