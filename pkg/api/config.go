package api

import (
	"fmt"

	"github.com/Tiffanyxxx3238/poopalooza-server/pkg/gateway"
)

// Config holds configuration for the HTTP handler.
type Config struct {
	// Gateway is the request orchestrator (required).
	Gateway *gateway.Gateway

	// ServiceName appears in the service-identity response (default:
	// "poopalooza-assistant").
	ServiceName string

	// Version appears in the service-identity response (default: "dev").
	Version string

	// ProviderHourly is an informational hint about the upstream's own
	// hourly budget; it gates nothing locally.
	ProviderHourly int

	// Logger is used for structured logging (default: NoopLogger).
	Logger gateway.Logger
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Gateway == nil {
		return fmt.Errorf("gateway is required")
	}
	return nil
}

// NewHandler creates an HTTP handler with the given configuration.
func NewHandler(config Config) (*Handler, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if config.ServiceName == "" {
		config.ServiceName = "poopalooza-assistant"
	}
	if config.Version == "" {
		config.Version = "dev"
	}
	if config.Logger == nil {
		config.Logger = &gateway.NoopLogger{}
	}
	return newHandler(config), nil
}
