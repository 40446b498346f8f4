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
	cache   sync.Map // reflect.Type -> any (struct value)
	parseMu sync.Mutex

	envFilesOnce sync.Once
)

// Option tunes a single Load call.
type Option func(*loadOptions)

type loadOptions struct {
	prefix   string
	noCache  bool
	envFiles []string
}

// WithPrefix prepends prefix to every variable name of the struct.
func WithPrefix(prefix string) Option {
	return func(o *loadOptions) { o.prefix = prefix }
}

// WithoutCache forces a fresh parse and does not store the result.
func WithoutCache() Option {
	return func(o *loadOptions) { o.noCache = true }
}

// WithEnvFiles overrides the dotenv files read before the first parse.
// Missing files are ignored.
func WithEnvFiles(files ...string) Option {
	return func(o *loadOptions) { o.envFiles = files }
}

// Load fills v from the environment. The first successful parse of a type
// is cached for the rest of the process lifetime.
func Load[T any](v *T, opts ...Option) error {
	if v == nil {
		return ErrNilPointer
	}

	o := loadOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	envFilesOnce.Do(func() {
		// A missing .env is normal outside development.
		_ = godotenv.Load(o.envFiles...)
	})

	key := cacheKey[T](o.prefix)
	if !o.noCache {
		if cached, ok := cache.Load(key); ok {
			*v = cached.(T)
			return nil
		}
	}

	parseMu.Lock()
	defer parseMu.Unlock()

	if !o.noCache {
		if cached, ok := cache.Load(key); ok {
			*v = cached.(T)
			return nil
		}
	}

	var parsed T
	if err := env.ParseWithOptions(&parsed, env.Options{Prefix: o.prefix}); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	if !o.noCache {
		cache.Store(key, parsed)
	}
	*v = parsed
	return nil
}

// MustLoad is Load that panics on failure. Use it for configuration the
// process cannot start without.
func MustLoad[T any](v *T, opts ...Option) {
	if err := Load(v, opts...); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

// Reset drops every cached configuration. Intended for tests.
func Reset() {
	cache.Range(func(k, _ any) bool {
		cache.Delete(k)
		return true
	})
}

func cacheKey[T any](prefix string) string {
	return prefix + "|" + reflect.TypeFor[T]().String()
}
