package observability

import "time"

// Config selects which telemetry providers the program starts.
type Config struct {
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// TracingConfig configures span export. SampleRate is the fraction of root
// traversals sampled: unset means 1 and 0 samples nothing.
type TracingConfig struct {
	Enabled    bool     `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string   `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,hostname_port"`
	Insecure   bool     `yaml:"insecure" mapstructure:"insecure"`
	SampleRate *float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1"`
}

// MetricsConfig configures metric export.
type MetricsConfig struct {
	Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint string        `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,hostname_port"`
	Insecure bool          `yaml:"insecure" mapstructure:"insecure"`
	Interval time.Duration `yaml:"interval" mapstructure:"interval" validate:"gte=0"`
}

// ApplyDefaults fills unset endpoints and rates with local-collector values.
func (c *Config) ApplyDefaults() {
	if c.Tracing.Endpoint == "" {
		c.Tracing.Endpoint = "localhost:4318"
	}
	if c.Tracing.SampleRate == nil {
		rate := 1.0
		c.Tracing.SampleRate = &rate
	}
	if c.Metrics.Endpoint == "" {
		c.Metrics.Endpoint = "localhost:4318"
	}
	if c.Metrics.Interval == 0 {
		c.Metrics.Interval = 15 * time.Second
	}
}

// Tracer returns the provider settings for the tracing section.
func (c *Config) Tracer(name, version, environment string) TracerConfig {
	rate := 1.0
	if c.Tracing.SampleRate != nil {
		rate = *c.Tracing.SampleRate
	}
	return TracerConfig{
		ServiceName:    name,
		ServiceVersion: version,
		Environment:    environment,
		Endpoint:       c.Tracing.Endpoint,
		Insecure:       c.Tracing.Insecure,
		SampleRate:     rate,
	}
}

// Meter returns the provider settings for the metrics section.
func (c *Config) Meter(name, version, environment string) MeterConfig {
	return MeterConfig{
		ServiceName:    name,
		ServiceVersion: version,
		Environment:    environment,
		Endpoint:       c.Metrics.Endpoint,
		Insecure:       c.Metrics.Insecure,
		Interval:       c.Metrics.Interval,
	}
}
