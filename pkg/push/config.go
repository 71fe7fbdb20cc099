package push

// Config selects and configures the push provider.
type Config struct {
	Enabled         bool   `env:"PUSH_ENABLED" envDefault:"false"`
	ProjectID       string `env:"FIREBASE_PROJECT_ID"`
	CredentialsFile string `env:"FIREBASE_CREDENTIALS_FILE"`
	CredentialsJSON string `env:"FIREBASE_CREDENTIALS_JSON"`
	BatchSize       int    `env:"PUSH_BATCH_SIZE" envDefault:"500"`
}
