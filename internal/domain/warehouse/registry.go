package warehouse

import (
	"errors"

	"github.com/google/uuid"
)

// Config is the credential set for one physical warehouse: its ERP location
// id and its WMS tenant identity. Immutable after process start. Multiple
// display names may alias the same tenant.
type Config struct {
	// LocationID is the ERP-internal id of the warehouse location.
	LocationID string
	// TenantID is the WMS tenant the warehouse is credentialed under.
	TenantID uuid.UUID
	// ClientID and ClientSecret are the tenant's client-credentials grant.
	ClientID     string
	ClientSecret string
	// CustomerID is the distributor's customer record inside the tenant.
	CustomerID uuid.UUID
}

// Errors for registry construction.
var (
	ErrEmptyRegistry     = errors.New("warehouse: registry has no entries")
	ErrMissingName       = errors.New("warehouse: entry has empty display name")
	ErrMissingCredential = errors.New("warehouse: entry is missing WMS client credentials")
)

// Registry maps ERP warehouse display names to warehouse configs. It is
// built once at startup and read-only afterwards, so lookups are safe from
// any goroutine.
type Registry struct {
	byName map[string]Config
}

// NewRegistry builds a registry from a display-name table. The table is
// copied; later mutation of the argument does not affect the registry.
func NewRegistry(table map[string]Config) (*Registry, error) {
	if len(table) == 0 {
		return nil, ErrEmptyRegistry
	}
	byName := make(map[string]Config, len(table))
	for name, cfg := range table {
		if name == "" {
			return nil, ErrMissingName
		}
		if cfg.ClientID == "" || cfg.ClientSecret == "" {
			return nil, ErrMissingCredential
		}
		byName[name] = cfg
	}
	return &Registry{byName: byName}, nil
}

// ConfigFor looks up the config for a warehouse display name. A missing
// entry is not an error: callers drop unrecognized warehouses from
// reconciliation rather than aborting sibling warehouses.
func (r *Registry) ConfigFor(name string) (Config, bool) {
	cfg, ok := r.byName[name]
	return cfg, ok
}

// Len returns the number of registered display names, aliases included.
func (r *Registry) Len() int {
	return len(r.byName)
}

// Names returns all registered display names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	return names
}
