package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/roach88/bitshub/internal/engine"
)

type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Server  ServerConfig  `mapstructure:"server"`
	Admin   AdminConfig   `mapstructure:"admin"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Orders  OrdersConfig  `mapstructure:"orders"`
	Cart    CartConfig    `mapstructure:"cart"`
	Log     LogConfig     `mapstructure:"log"`
}

type StorageConfig struct {
	Path string `mapstructure:"path"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type AdminConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

type CatalogConfig struct {
	// SeedPath is an optional CUE catalog replacing the built-in seed.
	SeedPath string `mapstructure:"seed_path"`
}

type OrdersConfig struct {
	CancelWindow time.Duration `mapstructure:"cancel_window"`
	DeliveryLead time.Duration `mapstructure:"delivery_lead"`
}

type CartConfig struct {
	AddedFlash time.Duration `mapstructure:"added_flash"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// setDefaults makes every key optional.
func setDefaults(v *viper.Viper) {
	p := engine.DefaultPolicy()
	v.SetDefault("storage.path", "bitshub.db")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("admin.email", p.AdminEmail)
	v.SetDefault("admin.password", p.AdminPassword)
	v.SetDefault("catalog.seed_path", "")
	v.SetDefault("orders.cancel_window", p.CancelWindow)
	v.SetDefault("orders.delivery_lead", p.DeliveryLead)
	v.SetDefault("cart.added_flash", p.AddedFlash)
	v.SetDefault("log.level", "info")
}

// LoadConfig loads configuration from config.yaml and BITSHUB_ environment
// variables. path names an explicit config file; when empty the usual
// locations are searched and a missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./")
		v.AddConfigPath("$HOME/.bitshub/")
		v.AddConfigPath("/etc/bitshub/")
	}

	// BITSHUB_STORAGE_PATH overrides storage.path
	v.SetEnvPrefix("BITSHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks values viper cannot type-check.
func (c *Config) Validate() error {
	if c.Orders.CancelWindow <= 0 {
		return fmt.Errorf("orders.cancel_window must be positive, got %s", c.Orders.CancelWindow)
	}
	if c.Orders.DeliveryLead < 0 {
		return fmt.Errorf("orders.delivery_lead must not be negative, got %s", c.Orders.DeliveryLead)
	}
	if c.Cart.AddedFlash < 0 {
		return fmt.Errorf("cart.added_flash must not be negative, got %s", c.Cart.AddedFlash)
	}
	if c.Admin.Email == "" {
		return errors.New("admin.email must be set")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// Policy converts the storefront settings into engine rules.
func (c *Config) Policy() engine.Policy {
	return engine.Policy{
		AdminEmail:    c.Admin.Email,
		AdminPassword: c.Admin.Password,
		CancelWindow:  c.Orders.CancelWindow,
		DeliveryLead:  c.Orders.DeliveryLead,
		AddedFlash:    c.Cart.AddedFlash,
	}
}

// SlogLevel parses log.level ("debug", "info", "warn", "error").
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
