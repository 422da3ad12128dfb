package options

import "sync"

// Store holds an active [Config], it is safe for concurrent use.
//
// Concurrent calls to [Store.Set] are last writer wins, readers always observe
// a complete Config, never a partially updated one.
type Store struct {
	config *Config    // The active config, nil until first Set or Get
	dir    string     // Directory to start project configuration discovery from
	mu     sync.Mutex // Guards config
}

// NewStore returns a new empty [Store] that discovers project configuration
// upwards from dir (or the working directory if dir is empty).
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Set replaces the active configuration and returns it.
//
// If exclusive is true, the new configuration is [Default] plus the overrides,
// otherwise the overrides are merged on top of the discovered project configuration,
// see [Load] for the errors this may return. On error the active configuration
// is left untouched.
func (s *Store) Set(exclusive bool, overrides ...Option) (Config, error) {
	cfg, err := s.build(exclusive, overrides)
	if err != nil {
		return Config{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.config = &cfg

	return cfg, nil
}

// Get returns the active configuration, lazily initialising it to the
// merged project configuration if it has never been set.
func (s *Store) Get() (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config != nil {
		return *s.config, nil
	}

	cfg, err := s.build(false, nil)
	if err != nil {
		return Config{}, err
	}

	s.config = &cfg

	return cfg, nil
}

// build constructs a new Config without touching the store.
func (s *Store) build(exclusive bool, overrides []Option) (Config, error) {
	if !exclusive {
		return Load(s.dir, overrides...)
	}

	cfg := Exclusive(overrides...)
	if cfg.Dir == "" {
		cfg.Dir = s.dir
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
