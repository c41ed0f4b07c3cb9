package env

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"stock-advisor/internal/application/port/output"

	"github.com/joho/godotenv"
)

var _ output.ConfigPort = (*EnvService)(nil)

var ErrInvalidValue = errors.New("invalid config value")

// EnvService reads settings from the process environment. Typed getters fall back
// to the default only when a key is unset; a value that does not parse is an error.
type EnvService struct {
	lookup func(string) (string, bool)
}

// NewEnvService loads .env, then .env.<APP_ENV> (default "dev") over it. Files are
// optional; a deployed server is usually configured through the environment alone.
func NewEnvService() *EnvService {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "dev"
	}

	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env: %v", err)
	}
	overlay := ".env." + appEnv
	if err := godotenv.Overload(overlay); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load %s: %v", overlay, err)
	}

	return &EnvService{lookup: os.LookupEnv}
}

// FromMap serves settings from a fixed map instead of the environment.
func FromMap(values map[string]string) *EnvService {
	return &EnvService{lookup: func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}}
}

func (e *EnvService) raw(key string) (string, bool) {
	v, ok := e.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e *EnvService) Get(key string) string {
	v, _ := e.raw(key)
	return v
}

func (e *EnvService) MustGet(key string) string {
	v, ok := e.raw(key)
	if !ok {
		log.Fatalf("ENV %s is missing", key)
	}
	return v
}

func (e *EnvService) GetWithDefault(key string, defaultValue string) string {
	if v, ok := e.raw(key); ok {
		return v
	}
	return defaultValue
}

func (e *EnvService) GetBool(key string, defaultValue bool) (bool, error) {
	v, ok := e.raw(key)
	if !ok {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue, fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidValue, key, v)
	}
	return parsed, nil
}

func (e *EnvService) GetInt(key string, defaultValue int) (int, error) {
	v, ok := e.raw(key)
	if !ok {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidValue, key, v)
	}
	return parsed, nil
}

// GetPositiveInt is GetInt for counts and limits, where zero or less is a mistake.
func (e *EnvService) GetPositiveInt(key string, defaultValue int) (int, error) {
	n, err := e.GetInt(key, defaultValue)
	if err != nil {
		return defaultValue, err
	}
	if n <= 0 {
		return defaultValue, fmt.Errorf("%w: %s=%d must be positive", ErrInvalidValue, key, n)
	}
	return n, nil
}
