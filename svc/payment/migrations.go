package payment

import "embed"

// Migrations holds the goose migrations for the payment_accounts table.
// Pass it to pg.Migrate with the default "migrations" path.
//
//go:embed migrations/*.sql
var Migrations embed.FS
