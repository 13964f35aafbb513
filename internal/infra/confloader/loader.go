package confloader

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix prefixes every environment variable the loader reads.
const DefaultEnvPrefix = "RESPKV_"

// Loader layers configuration sources into a single koanf tree. Each layer
// overrides the keys it sets and leaves the rest alone.
type Loader struct {
	k        *koanf.Koanf
	prefix   string
	path     string
	envPaths map[string]string // RESPKV_-stripped, lowercased name -> dotted key
}

// Option configures a Loader.
type Option func(*Loader)

// WithEnvPrefix replaces DefaultEnvPrefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) { l.prefix = prefix }
}

// WithConfigFile names the YAML file read by Load. Empty means no file.
func WithConfigFile(path string) Option {
	return func(l *Loader) { l.path = path }
}

// NewLoader returns an empty loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{k: koanf.New("."), prefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads the config file, then the environment, and decodes the result
// into target. target should already hold defaults: keys absent from every
// source leave the matching fields untouched.
//
// Command-line overrides go on top with LoadMap and a second Unmarshal.
func (l *Loader) Load(target any) error {
	l.envPaths = make(map[string]string)
	for _, key := range structKeys(target) {
		l.envPaths[strings.ReplaceAll(key, ".", "_")] = key
	}

	if err := l.LoadFile(l.path); err != nil {
		return err
	}
	if err := l.LoadEnv(); err != nil {
		return err
	}
	if err := l.Unmarshal(target); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// LoadFile merges a YAML file into the tree. An empty path is a no-op.
func (l *Loader) LoadFile(path string) error {
	if path == "" {
		return nil
	}
	if err := l.k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	return nil
}

// LoadEnv merges prefixed environment variables into the tree.
//
// Variable names are matched against the fields of the struct given to
// Load, so RESPKV_SERVER_REDIS_READ_TIMEOUT sets server.redis.read_timeout.
// Names matching no field become dotted paths by replacing each underscore.
func (l *Loader) LoadEnv() error {
	if err := l.k.Load(env.Provider(l.prefix, ".", l.envToKey), nil); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	return nil
}

func (l *Loader) envToKey(name string) string {
	name = strings.ToLower(strings.TrimPrefix(name, l.prefix))
	if key, ok := l.envPaths[name]; ok {
		return key
	}
	return strings.ReplaceAll(name, "_", ".")
}

// LoadMap merges data into the tree. Keys may be dotted paths.
func (l *Loader) LoadMap(data map[string]any) error {
	if err := l.k.Load(mapProvider(data), nil); err != nil {
		return fmt.Errorf("read overrides: %w", err)
	}
	return nil
}

// Unmarshal decodes the current tree into target using koanf struct tags.
func (l *Loader) Unmarshal(target any) error {
	return l.k.Unmarshal("", target)
}

// Get returns the raw value at key, or nil.
func (l *Loader) Get(key string) any {
	return l.k.Get(key)
}

// String returns the value at key as a string.
func (l *Loader) String(key string) string {
	return l.k.String(key)
}
