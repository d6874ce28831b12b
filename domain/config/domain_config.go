package config

import (
	"errors"
	"time"
)

// DomainConfig holds the business rules of the reference-data cache.
// These are domain decisions (how long lookup data stays trustworthy,
// how hard to protect the upstream) as opposed to the deployment
// settings in infrastructure/config.
type DomainConfig struct {
	// Freshness rules
	EntryTTL time.Duration

	// Upstream protection
	CoalesceRequests bool
	UpstreamTimeout  time.Duration

	// Warm-up rules
	MaxWarmStates int
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		// Reference data changes rarely; one refresh a day is enough
		EntryTTL: 24 * time.Hour,

		CoalesceRequests: true,
		UpstreamTimeout:  10 * time.Second,

		MaxWarmStates: 50,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// Tighter upstream budget in production
	config.UpstreamTimeout = 5 * time.Second

	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// Short TTL so upstream edits show up quickly while developing
	config.EntryTTL = 5 * time.Minute
	config.CoalesceRequests = false

	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.EntryTTL <= 0 {
		return errors.New("entry TTL must be positive")
	}
	if c.UpstreamTimeout <= 0 {
		return errors.New("upstream timeout must be positive")
	}
	if c.MaxWarmStates < 0 {
		return errors.New("max warm states cannot be negative")
	}
	return nil
}
