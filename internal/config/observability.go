package config

import (
	"encoding/json"
	"fmt"
)

// DatadogConfig holds OTLP tracing configuration.
// Traces are exported to a local Datadog Agent which handles authentication
// and forwarding; the API key is only needed by the agent itself.
type DatadogConfig struct {
	// AgentHost is the Datadog Agent OTLP HTTP endpoint (default: localhost:4318)
	AgentHost string `mapstructure:"agent_host" json:"agent_host"`

	// Environment is the deployment environment tag (dev, staging, prod)
	Environment string `mapstructure:"environment" json:"environment"`

	// ServiceName is the service name shown in Datadog APM
	ServiceName string `mapstructure:"service_name" json:"service_name"`

	// APIKey is the Datadog API key (optional; SENSITIVE: masked in MarshalJSON)
	APIKey string `mapstructure:"api_key" json:"api_key"`
}

// MarshalJSON masks the API key.
func (d DatadogConfig) MarshalJSON() ([]byte, error) {
	type alias DatadogConfig
	a := alias(d)
	a.APIKey = maskSecret(a.APIKey)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal datadog config: %w", err)
	}
	return data, nil
}
