package pgstore

import (
	"context"
	"embed"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medbillhq/notifykit/pkg/pg"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// defaultUserExistsQuery assumes the owning application's users table. The
// notification engine never creates users, so existence is answered from the
// application schema.
const defaultUserExistsQuery = `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`

// Store implements the engine's persistence contracts on PostgreSQL:
// notify.PreferenceStore, notify.DigestStorage, and inapp.Storage.
type Store struct {
	pool            *pgxpool.Pool
	userExistsQuery string
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithUserExistsQuery overrides the query backing UserExists for
// applications whose user table differs from the default schema. The query
// must take the user ID as $1 and return a single boolean.
func WithUserExistsQuery(query string) StoreOption {
	return func(s *Store) {
		if query != "" {
			s.userExistsQuery = query
		}
	}
}

// New creates a Store over an existing connection pool.
func New(pool *pgxpool.Pool, opts ...StoreOption) *Store {
	s := &Store{
		pool:            pool,
		userExistsQuery: defaultUserExistsQuery,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Connect dials PostgreSQL per cfg, applies the embedded migrations, and
// returns a ready Store. The caller owns the returned pool's lifecycle via
// Close.
func Connect(ctx context.Context, cfg pg.Config, log *slog.Logger, opts ...StoreOption) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}

	pool, err := pg.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := pg.Migrate(ctx, pool, migrationsFS, "migrations", cfg, log); err != nil {
		pool.Close()
		return nil, err
	}

	return New(pool, opts...), nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Healthcheck reports database connectivity.
func (s *Store) Healthcheck(ctx context.Context) error {
	return pg.Healthcheck(s.pool)(ctx)
}
