package app

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"swampcaptcha/internal/relay"
)

const DefaultEnvFile = ".env"

// Config controls both the relay service and the terminal client.
type Config struct {
	Port      int    `env:"PORT"`
	Env       string `env:"APP_ENV"`
	StaticDir string `env:"SWAMP_STATIC_DIR"`
	// Challenges is an optional challenges.yaml.
	Challenges string `env:"SWAMP_CHALLENGES"`
	// AuditDB enables the SQLite ledger when set.
	AuditDB string `env:"SWAMP_AUDIT_DB"`
	LogPath string `env:"SWAMP_LOG_PATH"`
	// APIURL points the terminal client at a running service instead of
	// spawning the script in-process.
	APIURL string `env:"SWAMP_API_URL"`
	Relay  RelayConfig
	UI     UIConfig
}

type RelayConfig struct {
	Interpreter string `env:"SWAMP_RELAY_INTERPRETER"`
	Script      string `env:"SWAMP_RELAY_SCRIPT"`
	Dir         string `env:"SWAMP_RELAY_DIR"`
}

type UIConfig struct {
	StyleVariant string `env:"SWAMP_STYLE"`
	MotionLevel  string `env:"SWAMP_MOTION"`
	ASCIIOnly    bool   `env:"SWAMP_ASCII"`
}

func DefaultConfig() Config {
	return Config{
		Port:      3001,
		Env:       "development",
		StaticDir: "dist",
		Relay: RelayConfig{
			Interpreter: relay.DefaultInterpreter,
			Script:      relay.DefaultScript,
		},
		UI: UIConfig{
			StyleVariant: "swamp",
			MotionLevel:  "full",
		},
	}
}

// LoadConfig layers the dotenv file and then the process environment over
// the defaults. A missing default .env is fine; a missing explicit one is not.
func LoadConfig(envFile string) (Config, error) {
	cfg := DefaultConfig()
	path := envFile
	if path == "" {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if envFile != "" || !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("load %s: %w", path, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

func (c *Config) Production() bool {
	return c.Env == "production"
}

func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Port == 0 {
		c.Port = 3001
	}
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	if c.Env == "" {
		c.Env = "development"
	}
	if c.StaticDir == "" {
		c.StaticDir = "dist"
	}
	if c.Relay.Interpreter == "" {
		c.Relay.Interpreter = relay.DefaultInterpreter
	}
	if c.Relay.Script == "" {
		c.Relay.Script = relay.DefaultScript
	}

	if c.APIURL != "" {
		u, err := url.Parse(c.APIURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid api url %q", c.APIURL)
		}
	}

	switch c.UI.StyleVariant {
	case "", "swamp", "cozy", "nokia":
	default:
		return fmt.Errorf("invalid ui style variant %q", c.UI.StyleVariant)
	}
	if c.UI.StyleVariant == "" {
		c.UI.StyleVariant = "swamp"
	}
	switch c.UI.MotionLevel {
	case "", "off", "reduced", "full":
	default:
		return fmt.Errorf("invalid ui motion level %q", c.UI.MotionLevel)
	}
	if c.UI.MotionLevel == "" {
		c.UI.MotionLevel = "full"
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
