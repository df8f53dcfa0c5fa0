package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAppConfig_MissingFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}

	if err := LoadAppConfig(""); err == nil {
		t.Error("expected error loading a missing config.yml")
	}
}

func TestLoadAppConfig_InvalidYAML(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "config.yml"), []byte("feeds: [[["), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}

	if err := LoadAppConfig(""); err == nil {
		t.Error("expected error loading invalid YAML")
	}
}

func TestLoadAppConfig_AppliesDefaultsAndValidates(t *testing.T) {
	origDir, _ := os.Getwd()
	origConfig := Config
	defer func() {
		os.Chdir(origDir)
		Config = origConfig
	}()

	tmpDir := t.TempDir()
	doc := `
server:
  port: 9090
feeds:
  - id: 1
    url: "https://example.com/feed1"
schedule:
  staticZipPath: "/data/gtfs.zip"
`
	if err := os.WriteFile(filepath.Join(tmpDir, "config.yml"), []byte(doc), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}

	if err := LoadAppConfig(""); err != nil {
		t.Fatalf("LoadAppConfig: %v", err)
	}
	if Config.Match.LateTripLimitSec != 3600 {
		t.Errorf("LateTripLimitSec default = %d, want 3600", Config.Match.LateTripLimitSec)
	}
	if Config.Match.LatencyLimit == nil || *Config.Match.LatencyLimit != -1 {
		t.Errorf("LatencyLimit default = %v, want -1", Config.Match.LatencyLimit)
	}
	if Config.CycleIntervalMS != 60000 {
		t.Errorf("CycleIntervalMS default = %d, want 60000", Config.CycleIntervalMS)
	}
}

func TestLoadAppConfig_MissingRequiredFieldFailsValidation(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	// Missing schedule.staticZipPath, which is required.
	doc := `
server:
  port: 9090
feeds:
  - id: 1
    url: "https://example.com/feed1"
`
	if err := os.WriteFile(filepath.Join(tmpDir, "config.yml"), []byte(doc), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}

	if err := LoadAppConfig(""); err == nil {
		t.Error("expected validation error for missing schedule.staticZipPath")
	}
}

func TestMatchConfig_ReversedSet(t *testing.T) {
	m := &MatchConfig{ReversedDirectionsRoutes: []string{"D", "N"}}
	set := m.ReversedSet()
	if !set["D"] || !set["N"] {
		t.Errorf("ReversedSet() = %v, want D and N present", set)
	}
	if set["Q"] {
		t.Error("unexpected route Q in reversed set")
	}
}
