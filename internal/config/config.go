package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config interface {
	ClientConfig
	LogConfig
	CorsConfig
	TokenConfig
}

type ClientConfig interface {
	GetAPIBaseURL() string
	GetSessionStore() string
	GetSessionPath() string
	GetHTTPTimeout() time.Duration
	GetRefreshDedup() bool
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Logging
	Cors
	Tokens
}

// New loads an optional .env file and then parses the process environment.
func New() (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("load .env file: %w", err)
		}
	}
	return parse(env.Options{})
}

// FromMap builds a Config from an explicit environment, ignoring the process one.
func FromMap(environment map[string]string) (Config, error) {
	return parse(env.Options{Environment: environment})
}

func parse(opts env.Options) (Config, error) {
	var c mainConfig
	if err := env.ParseWithOptions(&c, opts); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.EnvVars.validate(); err != nil {
		return nil, err
	}
	return c, nil
}
