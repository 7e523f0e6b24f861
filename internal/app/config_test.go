package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigLayersDotenvUnderEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	body := "PORT=4100\nSWAMP_STYLE=nokia\nSWAMP_RELAY_SCRIPT=ogre.py\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("PORT")
		os.Unsetenv("SWAMP_RELAY_SCRIPT")
	})
	t.Setenv("SWAMP_STYLE", "cozy")
	t.Setenv("SWAMP_ASCII", "true")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Port != 4100 {
		t.Fatalf("expected port from dotenv, got %d", cfg.Port)
	}
	if cfg.UI.StyleVariant != "cozy" {
		t.Fatalf("expected environment to win over dotenv, got %q", cfg.UI.StyleVariant)
	}
	if !cfg.UI.ASCIIOnly {
		t.Fatalf("expected ascii from environment")
	}
	if cfg.Relay.Script != "ogre.py" || cfg.Relay.Interpreter != "python3" {
		t.Fatalf("unexpected relay config: %+v", cfg.Relay)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	if _, err := LoadConfig(""); err != nil {
		t.Fatalf("expected missing default .env to be ignored, got %v", err)
	}
	if _, err := LoadConfig("nope.env"); err == nil {
		t.Fatalf("expected missing explicit env file to fail")
	}
}

func TestValidateDefaultsAndRejects(t *testing.T) {
	cfg := Config{Env: " Production "}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !cfg.Production() || cfg.Port != 3001 || cfg.StaticDir != "dist" || cfg.UI.MotionLevel != "full" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Addr() != ":3001" {
		t.Fatalf("expected :3001, got %q", cfg.Addr())
	}

	bad := []Config{
		{Port: 70000},
		{APIURL: "ftp://swamp"},
		{APIURL: "http://"},
		{UI: UIConfig{StyleVariant: "neon"}},
		{UI: UIConfig{MotionLevel: "wild"}},
	}
	for _, c := range bad {
		if err := c.Validate(); err == nil {
			t.Fatalf("expected %+v to be rejected", c)
		}
	}
}
