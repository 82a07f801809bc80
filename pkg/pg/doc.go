// Package pg connects to PostgreSQL with pgx/v5 and applies goose
// migrations shipped by the packages that own tables.
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, spool.PostgresMigrations, "migrations", cfg, slog.Default()); err != nil {
//	    return err
//	}
//
// IsDuplicateKeyError and IsSerializationFailure classify *pgconn.PgError
// values by SQLSTATE.
package pg
