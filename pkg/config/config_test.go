package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("pharmacy-service")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, EnvDevelopment, cfg.Server.Environment)
	assert.Equal(t, "./data", cfg.Data.Dir)
	assert.Equal(t, 7, cfg.Inventory.LeadTimeDays)
	assert.Equal(t, 30, cfg.Inventory.TargetDaysSupply)
	assert.Equal(t, 0.95, cfg.Inventory.ServiceLevel)
	assert.Equal(t, 50, cfg.Inventory.PackSize)
	assert.Equal(t, 0.6, cfg.Inventory.FuzzyThreshold)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessExpiry)
	assert.False(t, cfg.RabbitMQ.Enabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PHARMSTOCK_SERVER_PORT", "9090")
	t.Setenv("PHARMSTOCK_DATA_DIR", "/var/lib/pharmstock")
	t.Setenv("PHARMSTOCK_INVENTORY_LEAD_TIME_DAYS", "14")

	cfg, err := Load("pharmacy-service")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/var/lib/pharmstock", cfg.Data.Dir)
	assert.Equal(t, 14, cfg.Inventory.LeadTimeDays)
}

func TestInventoryConfigValidate(t *testing.T) {
	valid := InventoryConfig{
		LeadTimeDays:     7,
		TargetDaysSupply: 30,
		ServiceLevel:     0.95,
		PackSize:         50,
		FuzzyThreshold:   0.6,
	}

	tests := []struct {
		name    string
		mutate  func(*InventoryConfig)
		wantErr bool
	}{
		{"valid", func(c *InventoryConfig) {}, false},
		{"lead time zero", func(c *InventoryConfig) { c.LeadTimeDays = 0 }, true},
		{"lead time too long", func(c *InventoryConfig) { c.LeadTimeDays = 31 }, true},
		{"unknown service level", func(c *InventoryConfig) { c.ServiceLevel = 0.97 }, true},
		{"service level 99", func(c *InventoryConfig) { c.ServiceLevel = 0.99 }, false},
		{"pack size zero", func(c *InventoryConfig) { c.PackSize = 0 }, true},
		{"threshold above one", func(c *InventoryConfig) { c.FuzzyThreshold = 1.5 }, true},
		{"target days zero", func(c *InventoryConfig) { c.TargetDaysSupply = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadWithValidationRejectsBadInventoryConfig(t *testing.T) {
	t.Setenv("PHARMSTOCK_INVENTORY_SERVICE_LEVEL", "0.5")

	_, err := LoadWithValidation("pharmacy-service")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service_level")
}
