package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Port  int    `yaml:"port"`
	valid bool
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	s.valid = true
	return nil
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "stickies")
	path := writeFile(t, "name: ${SAMPLE_NAME}\nport: 9\n")

	var cfg sample
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "stickies" || cfg.Port != 9 || !cfg.valid {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadValidationFailure(t *testing.T) {
	path := writeFile(t, "name: x\nport: 0\n")
	var cfg sample
	err := Load(path, &cfg)
	if err == nil || !strings.Contains(err.Error(), "config validation failed") {
		t.Errorf("err = %v", err)
	}
}

func TestLoadOptionalMissingKeepsDefaults(t *testing.T) {
	cfg := sample{Name: "default", Port: 8080}
	loaded, err := LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"), &cfg)
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if loaded {
		t.Error("loaded should be false for a missing file")
	}
	if cfg.Name != "default" || !cfg.valid {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadOptionalPresent(t *testing.T) {
	path := writeFile(t, "port: 7\n")
	cfg := sample{Name: "default", Port: 8080}
	loaded, err := LoadOptional(path, &cfg)
	if err != nil || !loaded {
		t.Fatalf("LoadOptional = %v, %v", loaded, err)
	}
	if cfg.Name != "default" || cfg.Port != 7 {
		t.Errorf("cfg = %+v", cfg)
	}
}
