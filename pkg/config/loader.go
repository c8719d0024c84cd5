package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Validator is implemented by config structs that need checks beyond what
// struct tags can express.
type Validator interface {
	Validate() error
}

// Option tunes a single Load call.
type Option func(*loadOptions)

type loadOptions struct {
	prefix string
}

// WithPrefix reads every variable of the struct under the given prefix,
// e.g. WithPrefix("REPLICA_") turns PG_CONN_URL into REPLICA_PG_CONN_URL.
func WithPrefix(prefix string) Option {
	return func(o *loadOptions) {
		o.prefix = prefix
	}
}

type configCache struct {
	mu     sync.Mutex
	values map[string]any
}

var (
	cache = &configCache{values: make(map[string]any)}

	defaultEnvLoaded sync.Once
)

// Load populates v from the environment. The default .env file in the
// working directory is read on first use if it exists. Parsed values are
// cached per type and prefix.
func Load[T any](v *T, opts ...Option) error {
	if v == nil {
		return ErrNilPointer
	}

	defaultEnvLoaded.Do(func() {
		// A missing .env file is fine.
		_ = godotenv.Load()
	})

	o := loadOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	key := cacheKey[T](o.prefix)

	cache.mu.Lock()
	defer cache.mu.Unlock()

	if cached, ok := cache.values[key]; ok {
		*v = cached.(T)
		return nil
	}

	var parsed T
	if err := env.ParseWithOptions(&parsed, env.Options{Prefix: o.prefix}); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	if val, ok := any(&parsed).(Validator); ok {
		if err := val.Validate(); err != nil {
			return errors.Join(ErrInvalidConfig, err)
		}
	}

	cache.values[key] = parsed
	*v = parsed
	return nil
}

// MustLoad is like Load but panics on failure.
func MustLoad[T any](v *T, opts ...Option) {
	if err := Load(v, opts...); err != nil {
		panic(fmt.Sprintf("config: failed to load required configuration: %v", err))
	}
}

// LoadEnv reads the given .env files into the process environment without
// overriding variables that are already set.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	if err := godotenv.Load(paths...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}

// MustLoadEnv is like LoadEnv but panics on failure.
func MustLoadEnv(paths ...string) {
	if err := LoadEnv(paths...); err != nil {
		panic(err.Error())
	}
}

// ResetCache drops every cached configuration.
func ResetCache() {
	cache.mu.Lock()
	cache.values = make(map[string]any)
	cache.mu.Unlock()
}

func cacheKey[T any](prefix string) string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	return prefix + "|" + t.PkgPath() + "." + t.String()
}
