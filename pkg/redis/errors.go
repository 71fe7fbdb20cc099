package redis

import "errors"

var (
	ErrEmptyConnectionURL           = errors.New("redis: connection url is required")
	ErrFailedToParseRedisConnString = errors.New("redis: invalid connection url")
	ErrRedisNotReady                = errors.New("redis: server did not answer ping")
	ErrHealthcheckFailed            = errors.New("redis: healthcheck failed")
)
