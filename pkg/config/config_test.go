package config

import (
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected Port to be 8080, got %s", cfg.Port)
	}

	if cfg.Env != "development" {
		t.Errorf("Expected Env to be development, got %s", cfg.Env)
	}

	if cfg.Bars.HeightPolicy != "linear" {
		t.Errorf("Expected linear height policy, got %s", cfg.Bars.HeightPolicy)
	}

	if cfg.Bars.Base != 500 || cfg.Bars.Step != 100 || cfg.Bars.Floor != 100 {
		t.Errorf("Unexpected linear defaults: %+v", cfg.Bars)
	}

	if cfg.StatsAPI.Timeout != 30*time.Second {
		t.Errorf("Expected StatsAPI timeout 30s, got %v", cfg.StatsAPI.Timeout)
	}
}

func TestLoadWithCustomValues(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("BAR_HEIGHT_POLICY", "TABLE")
	t.Setenv("BAR_HEIGHT_TABLE", "480, 360,240")
	t.Setenv("STATS_API_BASE_URL", "http://stats.local:5000/")
	t.Setenv("STATS_API_TIMEOUT", "5s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Expected Port to be 9000, got %s", cfg.Port)
	}

	if cfg.Env != "production" {
		t.Errorf("Expected Env to be production, got %s", cfg.Env)
	}

	if cfg.Bars.HeightPolicy != "table" {
		t.Errorf("Expected table height policy, got %s", cfg.Bars.HeightPolicy)
	}

	want := []int{480, 360, 240}
	if len(cfg.Bars.Table) != len(want) {
		t.Fatalf("Expected table %v, got %v", want, cfg.Bars.Table)
	}
	for i := range want {
		if cfg.Bars.Table[i] != want[i] {
			t.Errorf("Table[%d] = %d, want %d", i, cfg.Bars.Table[i], want[i])
		}
	}

	if cfg.StatsAPI.BaseURL != "http://stats.local:5000" {
		t.Errorf("Expected trailing slash trimmed, got %s", cfg.StatsAPI.BaseURL)
	}

	if cfg.StatsAPI.Timeout != 5*time.Second {
		t.Errorf("Expected timeout 5s, got %v", cfg.StatsAPI.Timeout)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{
			name:    "invalid environment",
			env:     map[string]string{"ENV": "invalid"},
			wantErr: true,
		},
		{
			name:    "archive without database url",
			env:     map[string]string{"ARCHIVE_ENABLED": "true"},
			wantErr: true,
		},
		{
			name:    "archive with database url",
			env:     map[string]string{"ARCHIVE_ENABLED": "true", "DATABASE_URL": "postgres://u:p@localhost:5432/db"},
			wantErr: false,
		},
		{
			name:    "unknown height policy",
			env:     map[string]string{"BAR_HEIGHT_POLICY": "exponential"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if (err != nil) != tt.wantErr {
				t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetEnvAsIntSlice_InvalidFallsBack(t *testing.T) {
	t.Setenv("TEST_INT_SLICE", "500,abc")

	got := getEnvAsIntSlice("TEST_INT_SLICE", []int{1, 2})
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("Expected default slice, got %v", got)
	}
}

func TestGetEnvAsDuration_InvalidFallsBack(t *testing.T) {
	t.Setenv("TEST_DURATION", "soon")

	if got := getEnvAsDuration("TEST_DURATION", "15s"); got != 15*time.Second {
		t.Errorf("Expected 15s, got %v", got)
	}
}

func TestGetEnvAsStringSlice(t *testing.T) {
	t.Setenv("TEST_STRING_SLICE", " http://a.test , ,http://b.test")
	got := getEnvAsStringSlice("TEST_STRING_SLICE", nil)
	if len(got) != 2 || got[0] != "http://a.test" || got[1] != "http://b.test" {
		t.Errorf("getEnvAsStringSlice() = %v", got)
	}

	t.Setenv("TEST_STRING_SLICE", " , ")
	got = getEnvAsStringSlice("TEST_STRING_SLICE", []string{"*"})
	if len(got) != 1 || got[0] != "*" {
		t.Errorf("blank list should fall back, got %v", got)
	}
}
