// Package config loads application configuration from a TOML file and
// environment variables via viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/brendansiraky/beerfarm-scripts/internal/domain/order"
	"github.com/brendansiraky/beerfarm-scripts/internal/domain/warehouse"
	"github.com/brendansiraky/beerfarm-scripts/internal/infrastructure/netsuite"
)

// Config is the full application configuration tree.
type Config struct {
	App       AppConfig        `mapstructure:"app"`
	Log       LogConfig        `mapstructure:"log"`
	HTTP      HTTPConfig       `mapstructure:"http"`
	NetSuite  NetSuiteConfig   `mapstructure:"netsuite"`
	Webhook   WebhookConfig    `mapstructure:"webhook"`
	Sync      SyncConfig       `mapstructure:"sync"`
	Audit     AuditConfig      `mapstructure:"audit"`
	Warehouse []WarehouseEntry `mapstructure:"warehouse"`
}

// AppConfig identifies the running service.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// HTTPConfig configures the webhook server.
type HTTPConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns the listen address.
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NetSuiteConfig holds the ERP account and OAuth 1.0a credential set.
type NetSuiteConfig struct {
	AccountID      string `mapstructure:"account_id"`
	ConsumerKey    string `mapstructure:"consumer_key"`
	ConsumerSecret string `mapstructure:"consumer_secret"`
	TokenID        string `mapstructure:"token_id"`
	TokenSecret    string `mapstructure:"token_secret"`
	BaseURL        string `mapstructure:"base_url"`
}

// Credentials converts the config block to the signing credential set.
func (c NetSuiteConfig) Credentials() netsuite.Credentials {
	return netsuite.Credentials{
		AccountID:      c.AccountID,
		ConsumerKey:    c.ConsumerKey,
		ConsumerSecret: c.ConsumerSecret,
		TokenID:        c.TokenID,
		TokenSecret:    c.TokenSecret,
	}
}

// WebhookConfig secures the inbound webhook surface.
type WebhookConfig struct {
	// APIKey is the shared bearer token every webhook caller must present.
	APIKey string `mapstructure:"api_key"`
}

// SyncConfig controls the periodic reconciliation sweeps.
type SyncConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
	// WindowDays is the trailing lookback for pending-order queries.
	WindowDays int `mapstructure:"window_days"`
	// StartHour and EndHour bound sweeps to business hours (local time).
	// Ticks outside [StartHour, EndHour) are skipped.
	StartHour int `mapstructure:"start_hour"`
	EndHour   int `mapstructure:"end_hour"`
}

// Window returns the sweep query window ending at now.
func (c SyncConfig) Window(now time.Time) order.Window {
	if c.WindowDays <= 0 {
		return order.DefaultWindow(now)
	}
	return order.Window{
		After:  now.AddDate(0, 0, -c.WindowDays),
		Before: now.AddDate(0, 0, 1),
	}
}

// AuditConfig locates the on-disk audit trail.
type AuditConfig struct {
	Dir string `mapstructure:"dir"`
}

// WarehouseEntry is one [[warehouse]] block: a WMS tenant credential set and
// the ERP display names that map onto it. Names beyond the first are aliases
// for the same tenant.
type WarehouseEntry struct {
	Names        []string `mapstructure:"names"`
	LocationID   string   `mapstructure:"location_id"`
	TenantID     string   `mapstructure:"tenant_id"`
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	CustomerID   string   `mapstructure:"customer_id"`
}

// Load reads configuration from the given file (or ./config.toml when empty)
// and from BEERFARM_-prefixed environment variables, applies defaults, and
// validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("BEERFARM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "beerfarm-scripts"
	}
	if c.App.Environment == "" {
		c.App.Environment = "production"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.Sync.Interval <= 0 {
		c.Sync.Interval = 2 * time.Hour
	}
	if c.Sync.WindowDays <= 0 {
		c.Sync.WindowDays = 28
	}
	if c.Sync.StartHour == 0 && c.Sync.EndHour == 0 {
		c.Sync.StartHour = 7
		c.Sync.EndHour = 19
	}
	if c.Audit.Dir == "" {
		c.Audit.Dir = "logs"
	}
}

func (c *Config) validate() error {
	if c.Webhook.APIKey == "" {
		return fmt.Errorf("config: webhook.api_key is required")
	}
	if err := c.NetSuite.Credentials().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Sync.StartHour < 0 || c.Sync.EndHour > 24 || c.Sync.StartHour >= c.Sync.EndHour {
		return fmt.Errorf("config: sync hours must satisfy 0 <= start_hour < end_hour <= 24")
	}
	if len(c.Warehouse) == 0 {
		return fmt.Errorf("config: at least one [[warehouse]] entry is required")
	}
	return nil
}

// Registry expands the warehouse entries, aliases included, into the runtime
// lookup table.
func (c *Config) Registry() (*warehouse.Registry, error) {
	table := make(map[string]warehouse.Config)
	for i, entry := range c.Warehouse {
		if len(entry.Names) == 0 {
			return nil, fmt.Errorf("config: warehouse entry %d has no names", i)
		}
		tenantID, err := uuid.Parse(entry.TenantID)
		if err != nil {
			return nil, fmt.Errorf("config: warehouse %q has invalid tenant_id: %w", entry.Names[0], err)
		}
		var customerID uuid.UUID
		if entry.CustomerID != "" {
			customerID, err = uuid.Parse(entry.CustomerID)
			if err != nil {
				return nil, fmt.Errorf("config: warehouse %q has invalid customer_id: %w", entry.Names[0], err)
			}
		}
		wc := warehouse.Config{
			LocationID:   entry.LocationID,
			TenantID:     tenantID,
			ClientID:     entry.ClientID,
			ClientSecret: entry.ClientSecret,
			CustomerID:   customerID,
		}
		for _, name := range entry.Names {
			if _, dup := table[name]; dup {
				return nil, fmt.Errorf("config: duplicate warehouse name %q", name)
			}
			table[name] = wc
		}
	}
	return warehouse.NewRegistry(table)
}
