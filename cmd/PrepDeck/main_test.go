package main

import (
	"path/filepath"
	"testing"
)

func TestLoadEnvironmentConfigDefaults(t *testing.T) {
	t.Setenv("PREPDECK_STATE_DIR", "")
	t.Setenv("PREPDECK_DATA_DSN", "")
	t.Setenv("API_ADDR", "")
	t.Setenv("PREPDECK_DEMO_MODE", "")

	config := loadEnvironmentConfig()
	if config.StateDir != DefaultStateDir {
		t.Errorf("expected default state dir %s, got %s", DefaultStateDir, config.StateDir)
	}
	if want := filepath.Join(DefaultStateDir, DefaultDataFileName); config.DataDSN != want {
		t.Errorf("expected default data DSN %s, got %s", want, config.DataDSN)
	}
	if config.APIAddr != DefaultAPIAddr {
		t.Errorf("expected default API addr %s, got %s", DefaultAPIAddr, config.APIAddr)
	}
	if config.DemoMode {
		t.Error("expected demo mode off by default")
	}
}

func TestLoadEnvironmentConfigOverrides(t *testing.T) {
	t.Setenv("PREPDECK_STATE_DIR", "/tmp/prepdeck-test")
	t.Setenv("PREPDECK_DATA_DSN", "postgres://localhost/prepdeck")
	t.Setenv("API_ADDR", ":9090")
	t.Setenv("PREPDECK_DEMO_MODE", "true")

	config := loadEnvironmentConfig()
	if config.StateDir != "/tmp/prepdeck-test" {
		t.Errorf("expected overridden state dir, got %s", config.StateDir)
	}
	if config.DataDSN != "postgres://localhost/prepdeck" {
		t.Errorf("expected overridden DSN, got %s", config.DataDSN)
	}
	if config.APIAddr != ":9090" {
		t.Errorf("expected overridden API addr, got %s", config.APIAddr)
	}
	if !config.DemoMode {
		t.Error("expected demo mode on")
	}
}

func TestOpenStoreSelectsBackend(t *testing.T) {
	dir := t.TempDir()

	jsonDSN := filepath.Join(dir, "user_data.json")
	sqliteDSN := filepath.Join(dir, "prepdeck.db")

	tests := []struct {
		name string
		dsn  string
	}{
		{"json backend", jsonDSN},
		{"sqlite backend", sqliteDSN},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn := tt.dsn
			flags := Flags{dataDSN: &dsn}
			s, err := openStore(flags)
			if err != nil {
				t.Fatalf("openStore(%q) failed: %v", dsn, err)
			}
			defer s.Close()
			if _, err := s.LoadUserData(); err != nil {
				t.Errorf("expected fresh store to load zero value, got %v", err)
			}
		})
	}
}

func TestLoadCatalogEmbedded(t *testing.T) {
	empty := ""
	flags := Flags{questionFile: &empty}
	cat, err := loadCatalog(flags)
	if err != nil {
		t.Fatalf("loadCatalog failed: %v", err)
	}
	if cat == nil {
		t.Fatal("expected a catalog")
	}
}
