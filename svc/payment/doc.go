// Package payment adapts the Stripe API for the rest of the backend.
//
// Gateway owns one injected *client.API and an AccountStore that maps users
// to provider objects: a customer-source account for paying users and a
// platform-account (Express connected account) for users who receive
// transfers. Input problems are reported as 400 *apperror.Error values,
// missing mappings as 404, and Stripe failures are returned wrapped with the
// operation name so *stripe.Error stays reachable through errors.As.
//
// PgAccountStore keeps the mapping in PostgreSQL; its schema ships in
// Migrations for pg.Migrate. WebhookHandler verifies Stripe signatures and
// keeps stored connected accounts in sync on account.updated.
package payment
