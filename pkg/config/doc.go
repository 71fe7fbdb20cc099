// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv for .env files and
// github.com/caarlos0/env/v11 for parsing struct tags. Every infrastructure
// package in this module exposes a Config struct with env tags; the server
// composes them into a single struct and calls Load once at startup.
//
// Parsed values are cached per type, so repeated Load calls for the same type
// return the first result. Use Reset in tests that mutate the environment.
package config
