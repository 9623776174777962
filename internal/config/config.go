// Package config reads process configuration from the environment.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// ErrMissingEnv is the error MustGet panics with when a required
// environment variable is unset. The typed getters (GetInt, GetDuration)
// never return it; they fall back to their default instead.
var ErrMissingEnv = errors.New("config: required environment variable not set")

// Get retrieves an environment variable or returns defaultValue.
func Get(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// MustGet retrieves an environment variable or panics.
func MustGet(key string) string {
	value := os.Getenv(key)
	if value == "" {
		panic(ErrMissingEnv.Error() + ": " + key)
	}
	return value
}

// GetInt retrieves an integer environment variable or returns defaultValue
// if unset or unparseable.
func GetInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return v
}

// GetDuration retrieves a duration environment variable (Go duration
// syntax, e.g. "10s") or returns defaultValue if unset or unparseable.
func GetDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return d
}
