package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"swampcaptcha/internal/app"
)

type rootFlags struct {
	envFile    string
	challenges string
	auditDB    string
	logPath    string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "swampcaptcha:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags rootFlags
	root := &cobra.Command{
		Use:           "swampcaptcha",
		Short:         "A CAPTCHA that asks you to win at Snake and talk your way past an ogre",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "dotenv file to load (default .env when present)")
	root.PersistentFlags().StringVar(&flags.challenges, "challenges", "", "challenges.yaml overriding the built-in tunables")
	root.PersistentFlags().StringVar(&flags.auditDB, "audit-db", "", "SQLite audit ledger path")
	root.PersistentFlags().StringVar(&flags.logPath, "log-path", "", "append JSON logs to this file")

	root.AddCommand(
		newServeCmd(&flags),
		newPlayCmd(&flags),
		newAskCmd(&flags),
		newStatsCmd(&flags),
	)
	return root
}

// loadConfig reads the environment and then applies any root flags the
// user set explicitly.
func loadConfig(cmd *cobra.Command, flags *rootFlags) (app.Config, error) {
	cfg, err := app.LoadConfig(flags.envFile)
	if err != nil {
		return cfg, err
	}
	pf := cmd.Flags()
	if pf.Changed("challenges") {
		cfg.Challenges = flags.challenges
	}
	if pf.Changed("audit-db") {
		cfg.AuditDB = flags.auditDB
	}
	if pf.Changed("log-path") {
		cfg.LogPath = flags.logPath
	}
	return cfg, nil
}

func newServeCmd(flags *rootFlags) *cobra.Command {
	var (
		port       int
		staticDir  string
		production bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the relay service and serve the built front end",
		Long: `Serve exposes POST /api/shrek, which runs the relay script once per
message, and serves static assets from the dist directory. In production
unknown paths fall back to index.html.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("static") {
				cfg.StaticDir = staticDir
			}
			if cmd.Flags().Changed("production") && production {
				cfg.Env = "production"
			}
			a, err := app.New(cfg, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Serve(cmd.Context())
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 3001, "listen port")
	cmd.Flags().StringVar(&staticDir, "static", "dist", "directory of built front-end assets")
	cmd.Flags().BoolVar(&production, "production", false, "enable the index.html fallback")
	return cmd
}

func newPlayCmd(flags *rootFlags) *cobra.Command {
	var (
		apiURL string
		style  string
		motion string
		ascii  bool
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Take the CAPTCHA in the terminal",
		Long: `Play runs both challenges in the terminal. Messages to the ogre go to
the relay script directly, or to a running service when --api-url is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("api-url") {
				cfg.APIURL = apiURL
			}
			if cmd.Flags().Changed("style") {
				cfg.UI.StyleVariant = style
			}
			if cmd.Flags().Changed("motion") {
				cfg.UI.MotionLevel = motion
			}
			if cmd.Flags().Changed("ascii") {
				cfg.UI.ASCIIOnly = ascii
			}
			// Logs would tear the alt screen unless they go to a file.
			a, err := app.New(cfg, nil)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Play(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&apiURL, "api-url", "", "base URL of a running swampcaptcha service")
	cmd.Flags().StringVar(&style, "style", "swamp", "colour scheme: swamp, cozy or nokia")
	cmd.Flags().StringVar(&motion, "motion", "full", "animation level: off, reduced or full")
	cmd.Flags().BoolVar(&ascii, "ascii", false, "draw with ASCII only")
	return cmd
}

func newAskCmd(flags *rootFlags) *cobra.Command {
	var apiURL string
	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Send one message to the ogre and print the raw JSON reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("api-url") {
				cfg.APIURL = apiURL
			}
			message := strings.TrimSpace(strings.Join(args, " "))
			if message == "" {
				return errors.New("message is required")
			}
			a, err := app.New(cfg, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Ask(cmd.Context(), message, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&apiURL, "api-url", "", "base URL of a running swampcaptcha service")
	return cmd
}

func newStatsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarise the audit ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			a, err := app.New(cfg, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Stats(cmd.Context(), cmd.OutOrStdout())
		},
	}
}
