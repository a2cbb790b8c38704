package config

import "errors"

var (
	// ErrInvalidConfig wraps validation failures of a loaded Config.
	ErrInvalidConfig = errors.New("invalid scout config")
	// ErrLoadConfig wraps failures reading the YAML file or SCOUT_* environment.
	ErrLoadConfig = errors.New("cannot load scout config")
)
