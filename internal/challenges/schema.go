package challenges

import (
	"fmt"
	"strings"
	"time"

	"swampcaptcha/internal/arcade"
	"swampcaptcha/internal/chat"
)

const (
	FileKind               = "challenges"
	SupportedSchemaVersion = 1
)

// File is the on-disk challenges.yaml. Every field is optional; zero values
// are replaced with the built-in tunables before validation.
type File struct {
	Kind          string           `yaml:"kind"`
	SchemaVersion int              `yaml:"schema_version"`
	Arcade        ArcadeSpec       `yaml:"arcade"`
	Conversation  ConversationSpec `yaml:"conversation"`

	Path string `yaml:"-"`
}

type ArcadeSpec struct {
	GridSize     int        `yaml:"grid_size"`
	TickMS       int        `yaml:"tick_ms"`
	DrainMS      int        `yaml:"drain_ms"`
	TargetScore  int        `yaml:"target_score"`
	StartBattery int        `yaml:"start_battery"`
	Start        *PointSpec `yaml:"start"`
	Heading      string     `yaml:"heading"`
	Apple        *PointSpec `yaml:"apple"`
	WinDelayMS   int        `yaml:"win_delay_ms"`
	Distraction  SMSSpec    `yaml:"distraction"`
}

type PointSpec struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

type SMSSpec struct {
	Chance *float64 `yaml:"chance"`
	MinMS  int      `yaml:"min_ms"`
	MaxMS  int      `yaml:"max_ms"`
	ShowMS int      `yaml:"show_ms"`
}

type ConversationSpec struct {
	Opening        string `yaml:"opening"`
	DeclinedLine   string `yaml:"declined_line"`
	BrokenLine     string `yaml:"broken_line"`
	SuccessDelayMS int    `yaml:"success_delay_ms"`
}

var headings = map[string]arcade.Direction{
	"up":    arcade.Up,
	"down":  arcade.Down,
	"left":  arcade.Left,
	"right": arcade.Right,
}

func (f File) Validate() error {
	if f.Kind != FileKind {
		return fmt.Errorf("kind must be %q", FileKind)
	}
	if f.SchemaVersion == 0 {
		return fmt.Errorf("schema_version is required")
	}
	if f.SchemaVersion > SupportedSchemaVersion {
		return fmt.Errorf("unsupported schema_version %d (max supported %d)", f.SchemaVersion, SupportedSchemaVersion)
	}

	a := f.Arcade
	if a.GridSize < 4 || a.GridSize > 64 {
		return fmt.Errorf("arcade.grid_size must be between 4 and 64")
	}
	if a.TargetScore < 1 {
		return fmt.Errorf("arcade.target_score must be positive")
	}
	if a.StartBattery < 1 || a.StartBattery > arcade.MaxBattery {
		return fmt.Errorf("arcade.start_battery must be between 1 and %d", arcade.MaxBattery)
	}
	if !a.Start.within(a.GridSize) {
		return fmt.Errorf("arcade.start is outside the grid")
	}
	if !a.Apple.within(a.GridSize) {
		return fmt.Errorf("arcade.apple is outside the grid")
	}
	if _, ok := headings[strings.ToLower(a.Heading)]; !ok {
		return fmt.Errorf("arcade.heading %q must be one of up, down, left, right", a.Heading)
	}
	if c := a.Distraction.Chance; c == nil || *c < 0 || *c > 1 {
		return fmt.Errorf("arcade.distraction.chance must be between 0 and 1")
	}
	if a.Distraction.MaxMS < a.Distraction.MinMS {
		return fmt.Errorf("arcade.distraction.max_ms must not be below min_ms")
	}

	if strings.TrimSpace(f.Conversation.Opening) == "" {
		return fmt.Errorf("conversation.opening is required")
	}
	return nil
}

func (p *PointSpec) within(grid int) bool {
	return p != nil && p.X >= 0 && p.Y >= 0 && p.X < grid && p.Y < grid
}

// ArcadeConfig converts the validated file into game tunables.
func (f File) ArcadeConfig() arcade.Config {
	a := f.Arcade
	return arcade.Config{
		GridSize:          a.GridSize,
		TickInterval:      ms(a.TickMS),
		DrainInterval:     ms(a.DrainMS),
		TargetScore:       a.TargetScore,
		StartBattery:      a.StartBattery,
		Start:             arcade.Point{X: a.Start.X, Y: a.Start.Y},
		StartDirection:    headings[strings.ToLower(a.Heading)],
		Apple:             arcade.Point{X: a.Apple.X, Y: a.Apple.Y},
		WinDelay:          ms(a.WinDelayMS),
		DistractionChance: *a.Distraction.Chance,
		DistractionMin:    ms(a.Distraction.MinMS),
		DistractionMax:    ms(a.Distraction.MaxMS),
		DistractionShow:   ms(a.Distraction.ShowMS),
	}
}

func (f File) ChatConfig() chat.Config {
	c := f.Conversation
	return chat.Config{
		Opening:      c.Opening,
		Declined:     c.DeclinedLine,
		Broken:       c.BrokenLine,
		SuccessDelay: ms(c.SuccessDelayMS),
	}
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }
