package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8080
	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Database.User = "advisor"
	cfg.Database.Database = "agri_advisor"
	cfg.Database.MaxOpenConns = 25
	cfg.Database.MaxIdleConns = 5
	cfg.Database.ConnMaxLifetime = 5 * time.Minute
	cfg.Logging.Level = "info"
	cfg.Advisor.ForecastHorizonDays = 7
	cfg.Advisor.MinTrainingSamples = 50
	cfg.Advisor.TrainingTimeout = 10 * time.Minute
	return cfg
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }},
		{"missing db host", func(c *Config) { c.Database.Host = "" }},
		{"missing db user", func(c *Config) { c.Database.User = "" }},
		{"missing db name", func(c *Config) { c.Database.Database = "" }},
		{"idle exceeds open", func(c *Config) { c.Database.MaxIdleConns = 100 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"horizon too long", func(c *Config) { c.Advisor.ForecastHorizonDays = 45 }},
		{"training samples too low", func(c *Config) { c.Advisor.MinTrainingSamples = 5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}
