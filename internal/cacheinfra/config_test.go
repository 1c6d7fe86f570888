package cacheinfra

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Capacity != 10000 {
		t.Errorf("expected Capacity to be 10000, got %d", cfg.Capacity)
	}

	if cfg.NumShards != 64 {
		t.Errorf("expected NumShards to be 64, got %d", cfg.NumShards)
	}

	if cfg.TTL != 10*time.Minute {
		t.Errorf("expected TTL to be 10 minutes, got %v", cfg.TTL)
	}

	if cfg.EvictionPercentage != 10 {
		t.Errorf("expected EvictionPercentage to be 10, got %d", cfg.EvictionPercentage)
	}

	if !cfg.Sliding {
		t.Error("expected Sliding to be true")
	}

	if cfg.KeyPrefix != "shuffle:" {
		t.Errorf("expected KeyPrefix to be %q, got %q", "shuffle:", cfg.KeyPrefix)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func(mutate func(*Config)) Config {
		cfg := DefaultConfig()
		mutate(&cfg)
		return cfg
	}

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "valid default config",
			cfg:  DefaultConfig(),
		},
		{
			name:    "zero capacity",
			cfg:     valid(func(c *Config) { c.Capacity = 0 }),
			wantErr: "config error in field Capacity: must be greater than 0",
		},
		{
			name:    "zero shards",
			cfg:     valid(func(c *Config) { c.NumShards = 0 }),
			wantErr: "config error in field NumShards: must be greater than 0",
		},
		{
			name:    "zero TTL",
			cfg:     valid(func(c *Config) { c.TTL = 0 }),
			wantErr: "config error in field TTL: must be greater than 0",
		},
		{
			name:    "eviction percentage too low",
			cfg:     valid(func(c *Config) { c.EvictionPercentage = 0 }),
			wantErr: "config error in field EvictionPercentage: must be between 1 and 100",
		},
		{
			name:    "eviction percentage too high",
			cfg:     valid(func(c *Config) { c.EvictionPercentage = 101 }),
			wantErr: "config error in field EvictionPercentage: must be between 1 and 100",
		},
		{
			name:    "negative eviction interval",
			cfg:     valid(func(c *Config) { c.EvictionInterval = -time.Second }),
			wantErr: "config error in field EvictionInterval: must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("expected no validation error but got: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error but got none")
			}
			if err.Error() != tt.wantErr {
				t.Errorf("expected error %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestConfig_ToSturdycOptions(t *testing.T) {
	cfg := DefaultConfig()
	if got := len(cfg.ToSturdycOptions()); got != 0 {
		t.Errorf("expected no sturdyc options for default config, got %d", got)
	}

	cfg.EvictionInterval = time.Minute
	if got := len(cfg.ToSturdycOptions()); got != 1 {
		t.Errorf("expected 1 sturdyc option with an eviction interval, got %d", got)
	}
}
