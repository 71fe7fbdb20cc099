package payment

import "time"

// Config holds Stripe credentials and webhook limits.
type Config struct {
	SecretKey                string        `env:"STRIPE_SECRET_KEY,required"`
	WebhookSecret            string        `env:"STRIPE_WEBHOOK_SECRET,required"`
	WebhookTolerance         time.Duration `env:"STRIPE_WEBHOOK_TOLERANCE" envDefault:"5m"`
	IgnoreAPIVersionMismatch bool          `env:"STRIPE_IGNORE_API_VERSION_MISMATCH" envDefault:"false"`
	MaxWebhookBodyBytes      int64         `env:"STRIPE_MAX_WEBHOOK_BODY_BYTES" envDefault:"65536"`
}
