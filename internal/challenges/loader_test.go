package challenges

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"swampcaptcha/internal/arcade"
	"swampcaptcha/internal/chat"
)

func TestLoadMissingFileUsesBuiltinTunables(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got := f.ArcadeConfig()
	want := arcade.DefaultConfig()
	if got != want {
		t.Fatalf("expected default arcade config\n got %+v\nwant %+v", got, want)
	}
	if f.ChatConfig() != chat.DefaultConfig() {
		t.Fatalf("expected default chat config, got %+v", f.ChatConfig())
	}
}

func TestLoadOverridesSelectedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "challenges.yaml")
	doc := `kind: challenges
schema_version: 1
arcade:
  grid_size: 10
  target_score: 5
  heading: down
  distraction:
    chance: 0
conversation:
  opening: "Ogres are like onions."
  success_delay_ms: 500
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := f.ArcadeConfig()
	if cfg.GridSize != 10 || cfg.TargetScore != 5 || cfg.StartDirection != arcade.Down {
		t.Fatalf("expected overrides applied, got %+v", cfg)
	}
	if cfg.Apple != (arcade.Point{X: 9, Y: 9}) {
		t.Fatalf("expected apple in the far corner of a 10 grid, got %v", cfg.Apple)
	}
	if cfg.DistractionChance != 0 {
		t.Fatalf("expected explicit zero chance to survive defaults, got %v", cfg.DistractionChance)
	}
	if cfg.TickInterval != 200*time.Millisecond {
		t.Fatalf("expected default tick, got %v", cfg.TickInterval)
	}
	talk := f.ChatConfig()
	if talk.Opening != "Ogres are like onions." || talk.SuccessDelay != 500*time.Millisecond {
		t.Fatalf("unexpected chat config: %+v", talk)
	}
	if talk.Broken != chat.DefaultConfig().Broken {
		t.Fatalf("expected default broken line, got %q", talk.Broken)
	}
}

func TestLoadRejectsInvalidFiles(t *testing.T) {
	cases := map[string]string{
		"wrong kind":     "kind: pack\nschema_version: 1\n",
		"future version": "kind: challenges\nschema_version: 9\n",
		"start off grid": "arcade:\n  grid_size: 6\n  start: {x: 6, y: 0}\n",
		"bad heading":    "arcade:\n  heading: sideways\n",
		"bad chance":     "arcade:\n  distraction:\n    chance: 1.5\n",
		"not yaml":       "arcade: [\n",
	}
	dir := t.TempDir()
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestValidateWithoutDefaultsDoesNotPanic(t *testing.T) {
	if err := (File{Kind: FileKind, SchemaVersion: 1}).Validate(); err == nil {
		t.Fatalf("expected empty file to fail validation")
	}
}
