package realtime

import "time"

// Config controls session timing and hub capacity.
type Config struct {
	BufferSize     int           `env:"REALTIME_BUFFER_SIZE" envDefault:"64"`
	MaxUsers       int           `env:"REALTIME_MAX_USERS" envDefault:"10000"`
	RedisChannel   string        `env:"REALTIME_REDIS_CHANNEL" envDefault:"realtime:events"`
	AllowedOrigins []string      `env:"REALTIME_ALLOWED_ORIGINS" envSeparator:","`
	WriteTimeout   time.Duration `env:"REALTIME_WRITE_TIMEOUT" envDefault:"10s"`
	PingInterval   time.Duration `env:"REALTIME_PING_INTERVAL" envDefault:"30s"`
}
