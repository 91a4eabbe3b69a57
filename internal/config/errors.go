package config

import "errors"

var (
	ErrReadingConfigFile   = errors.New("failed to read config file")
	ErrUnmarshallingConfig = errors.New("failed to unmarshal config")
	ErrInvalidMode         = errors.New("unknown report mode")
	ErrInvalidFrame        = errors.New("unknown reference frame")
	ErrInvalidStart        = errors.New("start must be an RFC 3339 time")
	ErrInvalidStep         = errors.New("step must be positive")
	ErrInvalidCount        = errors.New("count must be positive")
	ErrInvalidWorkers      = errors.New("prop.workers must be positive")
	ErrInvalidLogFormat    = errors.New("log.format must be json or text")
	ErrInvalidLimit        = errors.New("http limits must be positive")
	ErrMissingToken        = errors.New("auth.enabled requires auth.token")
	ErrMissingSource       = errors.New("both TLE sources are required")
)
