package config

import "errors"

var (
	ErrParsingConfig     = errors.New("failed to parse environment variables into config")
	ErrInvalidConfigType = errors.New("config type must be a struct")
	ErrLoadingEnvFile    = errors.New("failed to load env file")
)
