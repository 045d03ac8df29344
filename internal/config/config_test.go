package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig(dbPath string) Config {
	return Config{
		Port:         "8081",
		DataBackend:  "sqlite",
		SQLiteDBPath: dbPath,
		RateBaseURL:  "https://api.exchangerate-api.com/v4/latest",
		RateTimeout:  8 * time.Second,
		GeminiModel:  "gemini-2.0-flash",
	}
}

func TestConfig_Validate(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "satang.db")

	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errorString string
	}{
		{
			name:   "valid sqlite backend config",
			mutate: func(c *Config) {},
		},
		{
			name: "valid memory backend config",
			mutate: func(c *Config) {
				c.DataBackend = "memory"
				c.SQLiteDBPath = ""
			},
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "invalid data backend",
			mutate:      func(c *Config) { c.DataBackend = "redis" },
			wantErr:     true,
			errorString: "invalid data backend 'redis': must be one of [memory sqlite]",
		},
		{
			name:        "sqlite backend missing database path",
			mutate:      func(c *Config) { c.SQLiteDBPath = "" },
			wantErr:     true,
			errorString: "SQLite database path cannot be empty when using sqlite backend",
		},
		{
			name:        "empty rate base URL",
			mutate:      func(c *Config) { c.RateBaseURL = "" },
			wantErr:     true,
			errorString: "rate base URL cannot be empty",
		},
		{
			name:        "invalid rate base URL scheme",
			mutate:      func(c *Config) { c.RateBaseURL = "ftp://rates.example.com" },
			wantErr:     true,
			errorString: "invalid rate base URL scheme 'ftp': must be 'http' or 'https'",
		},
		{
			name:        "rate timeout too short",
			mutate:      func(c *Config) { c.RateTimeout = 500 * time.Millisecond },
			wantErr:     true,
			errorString: "invalid rate timeout 500ms: must be at least 1 second",
		},
		{
			name:        "rate timeout too long",
			mutate:      func(c *Config) { c.RateTimeout = 2 * time.Minute },
			wantErr:     true,
			errorString: "invalid rate timeout 2m0s: must be at most 1 minute",
		},
		{
			name:        "invalid timezone",
			mutate:      func(c *Config) { c.Timezone = "Mars/Olympus" },
			wantErr:     true,
			errorString: "invalid timezone 'Mars/Olympus'",
		},
		{
			name:   "valid timezone",
			mutate: func(c *Config) { c.Timezone = "Asia/Bangkok" },
		},
		{
			name: "scanning key without model",
			mutate: func(c *Config) {
				c.GeminiAPIKey = "key"
				c.GeminiModel = ""
			},
			wantErr:     true,
			errorString: "Gemini model cannot be empty when GEMINI_API_KEY is provided",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(dbPath)
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Config.Validate() error = nil, want error")
				}
				if tt.errorString != "" && !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("Config.Validate() error = %v, want error containing %v", err.Error(), tt.errorString)
				}
			} else if err != nil {
				t.Errorf("Config.Validate() error = %v, want nil", err)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "SQLITE_DB_PATH", "DATA_BACKEND", "RATE_BASE_URL", "RATE_TIMEOUT", "GEMINI_API_KEY", "GEMINI_MODEL", "TZ_DISPLAY"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8081" {
		t.Errorf("Port = %q, want 8081", cfg.Port)
	}
	if cfg.DataBackend != "sqlite" {
		t.Errorf("DataBackend = %q, want sqlite", cfg.DataBackend)
	}
	if cfg.RateTimeout != 8*time.Second {
		t.Errorf("RateTimeout = %v, want 8s", cfg.RateTimeout)
	}
	if cfg.GeminiAPIKey != "" {
		t.Errorf("GeminiAPIKey = %q, want empty", cfg.GeminiAPIKey)
	}
	if cfg.Location() != time.Local {
		t.Error("empty TZ_DISPLAY should resolve to local time")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("RATE_TIMEOUT", "3s")
	t.Setenv("TZ_DISPLAY", "Asia/Bangkok")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.DataBackend != "memory" {
		t.Errorf("DataBackend = %q, want memory", cfg.DataBackend)
	}
	if cfg.RateTimeout != 3*time.Second {
		t.Errorf("RateTimeout = %v, want 3s", cfg.RateTimeout)
	}
	if cfg.Location().String() != "Asia/Bangkok" {
		t.Errorf("Location = %v, want Asia/Bangkok", cfg.Location())
	}
}
