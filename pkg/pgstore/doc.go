// Package pgstore provides the PostgreSQL persistence layer for the
// notification engine. A single Store satisfies notify.PreferenceStore,
// notify.DigestStorage, and inapp.Storage over one pgx connection pool, with
// schema migrations embedded and applied on Connect.
//
// Usage:
//
//	store, err := pgstore.Connect(ctx, cfg, slog.Default())
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	manager, err := notify.NewManager(store, dispatchers,
//		notify.WithDigestStorage(store),
//	)
//
// User existence is answered from the owning application's users table; see
// WithUserExistsQuery when the schema differs from the default.
package pgstore
