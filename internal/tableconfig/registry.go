package tableconfig

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Registry is a concurrency-safe store of per-table configurations.
// Reads vastly outnumber writes: queries call Get on every request, while
// Set/SetAll run at startup or during rare runtime reconfiguration.
// Writers merge under the lock so readers never observe a torn config.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]Config
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]Config)}
}

// Get returns the configuration for table, falling back to Default() when
// the table was never registered. It never fails.
func (r *Registry) Get(table string) Config {
	r.mu.RLock()
	cfg, ok := r.tables[table]
	r.mu.RUnlock()
	if !ok {
		return Default()
	}
	return cfg
}

// Set merges cfg over the existing configuration for table (or over the
// default when the table is new).
func (r *Registry) Set(table string, cfg Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	base, ok := r.tables[table]
	if !ok {
		base = Default()
	}
	r.tables[table] = base.merge(cfg)
}

// SetAll merges multiple table configurations in one lock acquisition.
func (r *Registry) SetAll(configs map[string]Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for table, cfg := range configs {
		base, ok := r.tables[table]
		if !ok {
			base = Default()
		}
		r.tables[table] = base.merge(cfg)
	}
}

// Tables returns the names of all registered tables.
func (r *Registry) Tables() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tables))
	for t := range r.tables {
		names = append(names, t)
	}
	return names
}

// LoadFile reads a YAML file mapping table names to configurations and
// merges everything into the registry. Intended for startup wiring.
func (r *Registry) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load table configs: %w", err)
	}
	var configs map[string]Config
	if err := yaml.Unmarshal(raw, &configs); err != nil {
		return fmt.Errorf("load table configs: parse %s: %w", path, err)
	}
	r.SetAll(configs)
	return nil
}
