package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// PricingConfig controls how booking quotes are computed. The service fee
// is a platform-level setting, not a per-property one; the percentage in
// force at booking time is snapshotted onto the booking record, so a
// later change never rewrites existing financials.
type PricingConfig struct {
	ServiceFeePercent float64 `mapstructure:"serviceFeePercent"`
	MinNights         int     `mapstructure:"minNights"`
	MaxNights         int     `mapstructure:"maxNights"`
}

func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		ServiceFeePercent: 12,
		MinNights:         1,
		MaxNights:         90,
	}
}

// PricingHolder exposes the current pricing configuration and hot-reloads
// it when the backing file changes.
type PricingHolder struct {
	current atomic.Value // holds PricingConfig
}

// NewPricingHolder loads pricing.yml from the usual config paths, falling
// back to defaults when no file exists.
func NewPricingHolder() (*PricingHolder, error) {
	v := viper.New()

	v.SetConfigName("pricing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/zamstay/config")
	v.AddConfigPath("/etc/zamstay")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ZAMSTAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultPricingConfig()
		v.SetDefault("pricing.serviceFeePercent", defaults.ServiceFeePercent)
		v.SetDefault("pricing.minNights", defaults.MinNights)
		v.SetDefault("pricing.maxNights", defaults.MaxNights)
	}

	var cfg PricingConfig
	if err := v.UnmarshalKey("pricing", &cfg); err != nil {
		return nil, err
	}
	if err := validatePricingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &PricingHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PricingConfig
		if err := v.UnmarshalKey("pricing", &updated); err != nil {
			log.Printf("[pricing-config] reload failed: %v", err)
			return
		}
		if err := validatePricingConfig(updated); err != nil {
			log.Printf("[pricing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[pricing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticPricingHolder returns a holder pinned to the given config,
// with no file watching. Intended for tests.
func NewStaticPricingHolder(cfg PricingConfig) *PricingHolder {
	holder := &PricingHolder{}
	holder.current.Store(cfg)
	return holder
}

// Get returns the pricing configuration currently in force.
func (h *PricingHolder) Get() PricingConfig {
	return h.current.Load().(PricingConfig)
}

func validatePricingConfig(cfg PricingConfig) error {
	if cfg.ServiceFeePercent < 0 || cfg.ServiceFeePercent >= 100 {
		return errors.New("pricing.serviceFeePercent must be in [0, 100)")
	}
	if cfg.MinNights < 1 {
		return errors.New("pricing.minNights must be at least 1")
	}
	if cfg.MaxNights < cfg.MinNights {
		return errors.New("pricing.maxNights must be >= pricing.minNights")
	}
	return nil
}
