// Package pg connects to PostgreSQL through pgx/v5 and applies goose
// migrations shipped as embedded filesystems.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, payment.Migrations, log); err != nil {
//		return err
//	}
//
// Error helpers such as [IsDuplicateKeyError] and [IsNotFoundError] classify
// pgx and *pgconn.PgError values for store implementations.
package pg
