// Package config provides parsing and validation of gcmeter run
// configurations.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root of a run configuration.
//
// Example YAML:
//
//	name: "alloc churn baseline"
//	events: [cpu-cycles, instructions, real-time, gc-count]
//	samples: 10
//	discardFirst: true
//	workload:
//	  kind: alloc
//	  allocBytes: 65536
//	  allocCount: 1000
type Config struct {
	// Name of the run (for reporting)
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Events are the symbolic event names to measure
	Events []string `json:"events" yaml:"events"`

	// Samples is the number of measurements to aggregate
	Samples int `json:"samples,omitempty" yaml:"samples,omitempty"`

	// DiscardFirst drops a warm-up run before aggregation
	DiscardFirst bool `json:"discardFirst,omitempty" yaml:"discardFirst,omitempty"`

	// Workload selects the built-in work unit to measure
	Workload WorkloadConfig `json:"workload,omitempty" yaml:"workload,omitempty"`
}

// WorkloadConfig selects and parameterizes a built-in workload.
type WorkloadConfig struct {
	// Kind is "sleep", "spin", or "alloc"
	Kind string `json:"kind" yaml:"kind"`

	// Duration applies to sleep and spin (e.g. "10ms")
	Duration Duration `json:"duration,omitempty" yaml:"duration,omitempty"`

	// AllocBytes is the size of each allocation (alloc kind)
	AllocBytes int `json:"allocBytes,omitempty" yaml:"allocBytes,omitempty"`

	// AllocCount is the number of allocations per run (alloc kind)
	AllocCount int `json:"allocCount,omitempty" yaml:"allocCount,omitempty"`
}

// Default workload parameters, applied by ApplyDefaults.
const (
	DefaultSamples    = 10
	DefaultDuration   = 10 * time.Millisecond
	DefaultAllocBytes = 4096
	DefaultAllocCount = 1000
)

// ApplyDefaults fills unset fields with their defaults.
func ApplyDefaults(c *Config) {
	if c.Samples == 0 {
		c.Samples = DefaultSamples
	}
	if c.Workload.Kind == "" {
		c.Workload.Kind = "spin"
	}
	if c.Workload.Duration == 0 {
		c.Workload.Duration = Duration(DefaultDuration)
	}
	if c.Workload.AllocBytes == 0 {
		c.Workload.AllocBytes = DefaultAllocBytes
	}
	if c.Workload.AllocCount == 0 {
		c.Workload.AllocCount = DefaultAllocCount
	}
}

// Duration wraps time.Duration with string parsing in YAML and JSON
// ("10ms", "2s") plus bare integers treated as seconds.
type Duration time.Duration

// GetDuration returns the duration or a default if unset.
func (d Duration) GetDuration(defaultValue time.Duration) time.Duration {
	if d == 0 {
		return defaultValue
	}
	return time.Duration(d)
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return d.parse(s)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.parse(value.Value)
}

func (d *Duration) parse(s string) error {
	if s == "" || s == "null" {
		*d = 0
		return nil
	}

	if dur, err := time.ParseDuration(s); err == nil {
		*d = Duration(dur)
		return nil
	}

	// Bare integers are seconds.
	var seconds int
	if _, err := fmt.Sscanf(s, "%d", &seconds); err == nil {
		*d = Duration(time.Duration(seconds) * time.Second)
		return nil
	}
	return fmt.Errorf("invalid duration %q", s)
}
