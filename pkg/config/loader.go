package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// cache stores one parsed copy per configuration type so every component
// asking for the same struct sees identical values without re-parsing the
// environment.
type cache struct {
	mu     sync.RWMutex
	values map[string]any
}

var (
	globalCache = &cache{values: make(map[string]any)}

	defaultEnvOnce sync.Once
)

// LoadEnv loads one or more .env files into the process environment before
// parsing. Later files override earlier ones; variables already set in the
// environment always win. Calling LoadEnv is optional: Load falls back to a
// single ./.env on first use.
func LoadEnv(paths ...string) error {
	markDefaultEnvLoaded()
	if len(paths) == 0 {
		// Missing default file is fine.
		_ = godotenv.Load()
		return nil
	}
	if err := godotenv.Load(paths...); err != nil {
		return errors.Join(ErrLoadingEnvFiles, err)
	}
	return nil
}

// Load parses environment variables into cfg based on its env tags. Each
// configuration type is parsed once per process; later calls for the same
// type return the cached copy, so tests that mutate the environment must
// call ResetCache first.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilPointer
	}

	defaultEnvOnce.Do(func() {
		// The .env file is optional in production.
		_ = godotenv.Load()
	})

	key := typeName[T]()

	globalCache.mu.RLock()
	cached, ok := globalCache.values[key]
	globalCache.mu.RUnlock()
	if ok {
		*cfg = cached.(T)
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	globalCache.mu.Lock()
	// Another goroutine may have parsed concurrently; keep the first copy so
	// all callers agree.
	if cached, ok := globalCache.values[key]; ok {
		*cfg = cached.(T)
	} else {
		globalCache.values[key] = *cfg
	}
	globalCache.mu.Unlock()

	return nil
}

// MustLoad is Load that panics on failure, for configuration the process
// cannot start without.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load %s: %v", typeName[T](), err))
	}
}

// ResetCache clears all cached configurations. Intended for tests that
// change the environment between loads.
func ResetCache() {
	globalCache.mu.Lock()
	globalCache.values = make(map[string]any)
	globalCache.mu.Unlock()
}

// ForceReload re-parses cfg's type from the current environment, replacing
// any cached copy.
func ForceReload[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilPointer
	}

	globalCache.mu.Lock()
	delete(globalCache.values, typeName[T]())
	globalCache.mu.Unlock()

	return Load(cfg)
}

func markDefaultEnvLoaded() {
	defaultEnvOnce.Do(func() {})
}

func typeName[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	return t.String()
}
