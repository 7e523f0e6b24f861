package challenges

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"swampcaptcha/internal/arcade"
	"swampcaptcha/internal/chat"
)

// Load reads path and fills in every missing tunable. An empty path, or a
// path that does not exist, yields the built-in defaults.
func Load(path string) (File, error) {
	var f File
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return File{}, fmt.Errorf("read challenges %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(b, &f); err != nil {
				return File{}, fmt.Errorf("parse challenges %s: %w", path, err)
			}
			f.Path = path
		}
	}
	applyDefaults(&f)
	if err := f.Validate(); err != nil {
		return File{}, fmt.Errorf("%s: %w", displayPath(f), err)
	}
	return f, nil
}

// Default is Load without a file.
func Default() File {
	var f File
	applyDefaults(&f)
	return f
}

func displayPath(f File) string {
	if f.Path == "" {
		return "challenges"
	}
	return f.Path
}

func applyDefaults(f *File) {
	game := arcade.DefaultConfig()
	talk := chat.DefaultConfig()

	if f.Kind == "" {
		f.Kind = FileKind
	}
	if f.SchemaVersion == 0 {
		f.SchemaVersion = SupportedSchemaVersion
	}

	a := &f.Arcade
	if a.GridSize <= 0 {
		a.GridSize = game.GridSize
	}
	if a.TickMS <= 0 {
		a.TickMS = int(game.TickInterval.Milliseconds())
	}
	if a.DrainMS <= 0 {
		a.DrainMS = int(game.DrainInterval.Milliseconds())
	}
	if a.TargetScore <= 0 {
		a.TargetScore = game.TargetScore
	}
	if a.StartBattery <= 0 {
		a.StartBattery = game.StartBattery
	}
	if a.Start == nil {
		a.Start = &PointSpec{X: game.Start.X, Y: game.Start.Y}
	}
	if a.Heading == "" {
		a.Heading = "right"
	}
	if a.Apple == nil {
		// Bottom-right corner, whatever the grid size.
		a.Apple = &PointSpec{X: a.GridSize - 1, Y: a.GridSize - 1}
	}
	if a.WinDelayMS <= 0 {
		a.WinDelayMS = int(game.WinDelay.Milliseconds())
	}

	sms := &a.Distraction
	if sms.Chance == nil {
		v := game.DistractionChance
		sms.Chance = &v
	}
	if sms.MinMS <= 0 {
		sms.MinMS = int(game.DistractionMin.Milliseconds())
	}
	if sms.MaxMS <= 0 {
		sms.MaxMS = int(game.DistractionMax.Milliseconds())
	}
	if sms.ShowMS <= 0 {
		sms.ShowMS = int(game.DistractionShow.Milliseconds())
	}

	c := &f.Conversation
	if c.Opening == "" {
		c.Opening = talk.Opening
	}
	if c.DeclinedLine == "" {
		c.DeclinedLine = talk.Declined
	}
	if c.BrokenLine == "" {
		c.BrokenLine = talk.Broken
	}
	if c.SuccessDelayMS <= 0 {
		c.SuccessDelayMS = int(talk.SuccessDelay.Milliseconds())
	}
}
