// Package config loads the replay tuning file. The schema uses pointer
// fields so a partial JSON file only overrides what it names; every getter
// falls back to the engine default.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Defaults for anything the tuning file leaves unset.
const (
	DefaultStepPeriod      = 100 * time.Millisecond
	DefaultObserveInterval = 50 * time.Millisecond
	DefaultArcSamples      = 100
	DefaultSerialBaudRate  = 115200
)

// ReplayConfig is the root tuning schema for a replay run.
type ReplayConfig struct {
	StepPeriodMillis      *int `json:"step_period_millis,omitempty"`
	ObserveIntervalMillis *int `json:"observe_interval_millis,omitempty"`
	ArcSamples            *int `json:"arc_samples,omitempty"`
	SerialBaudRate        *int `json:"serial_baud_rate,omitempty"`
}

// EmptyReplayConfig returns a config where every getter yields its default.
func EmptyReplayConfig() *ReplayConfig {
	return &ReplayConfig{}
}

// Load reads a ReplayConfig from a JSON file. Fields omitted from the file
// retain their defaults, so partial configs are safe.
func Load(path string) (*ReplayConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyReplayConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cleanPath, err)
	}
	return cfg, nil
}

func (c *ReplayConfig) validate() error {
	if c.StepPeriodMillis != nil && *c.StepPeriodMillis <= 0 {
		return fmt.Errorf("step_period_millis must be positive, got %d", *c.StepPeriodMillis)
	}
	if c.ObserveIntervalMillis != nil && *c.ObserveIntervalMillis <= 0 {
		return fmt.Errorf("observe_interval_millis must be positive, got %d", *c.ObserveIntervalMillis)
	}
	if c.ArcSamples != nil && *c.ArcSamples < 3 {
		return fmt.Errorf("arc_samples must be at least 3, got %d", *c.ArcSamples)
	}
	if c.SerialBaudRate != nil && *c.SerialBaudRate <= 0 {
		return fmt.Errorf("serial_baud_rate must be positive, got %d", *c.SerialBaudRate)
	}
	return nil
}

// GetStepPeriod returns the playback step period.
func (c *ReplayConfig) GetStepPeriod() time.Duration {
	if c.StepPeriodMillis != nil {
		return time.Duration(*c.StepPeriodMillis) * time.Millisecond
	}
	return DefaultStepPeriod
}

// GetObserveInterval returns the observation tick interval.
func (c *ReplayConfig) GetObserveInterval() time.Duration {
	if c.ObserveIntervalMillis != nil {
		return time.Duration(*c.ObserveIntervalMillis) * time.Millisecond
	}
	return DefaultObserveInterval
}

// GetArcSamples returns the number of points per reconstructed arc.
func (c *ReplayConfig) GetArcSamples() int {
	if c.ArcSamples != nil {
		return *c.ArcSamples
	}
	return DefaultArcSamples
}

// GetSerialBaudRate returns the command port baud rate.
func (c *ReplayConfig) GetSerialBaudRate() int {
	if c.SerialBaudRate != nil {
		return *c.SerialBaudRate
	}
	return DefaultSerialBaudRate
}
