package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	mu       sync.Mutex
	cache    = map[reflect.Type]any{}
	dotenvMu sync.Once
)

// LoadEnv reads one or more .env files into the process environment.
// Variables already present in the environment are not overwritten.
func LoadEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}

// Load parses the environment into a value of type T. The default .env file
// is read on first use when present. Each type is parsed once and served from
// cache afterwards.
//
//	type appConfig struct {
//		Mongo mongo.Config
//		Addr  string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	cfg, err := config.Load[appConfig]()
func Load[T any]() (T, error) {
	dotenvMu.Do(func() { _ = godotenv.Load() })

	var v T
	t := reflect.TypeOf(&v).Elem()
	if t.Kind() != reflect.Struct {
		return v, fmt.Errorf("%w: %s", ErrInvalidConfigType, t)
	}

	mu.Lock()
	defer mu.Unlock()

	if cached, ok := cache[t]; ok {
		return cached.(T), nil
	}
	if err := env.Parse(&v); err != nil {
		return v, errors.Join(ErrParsingConfig, err)
	}
	cache[t] = v
	return v, nil
}

// MustLoad is like Load but panics on failure.
func MustLoad[T any]() T {
	v, err := Load[T]()
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return v
}

// Reset drops every cached configuration. Intended for tests.
func Reset() {
	mu.Lock()
	clear(cache)
	mu.Unlock()
}
