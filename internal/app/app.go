package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"swampcaptcha/internal/challenges"
	"swampcaptcha/internal/relay"
	"swampcaptcha/internal/server"
	"swampcaptcha/internal/state"
	"swampcaptcha/internal/telemetry"
	"swampcaptcha/internal/ui"
)

const shutdownTimeout = 5 * time.Second

var ErrLedgerDisabled = errors.New("audit ledger disabled; set SWAMP_AUDIT_DB")

type App struct {
	cfg Config

	logger     *telemetry.JSONLogger
	store      *state.SQLiteStore
	relay      *relay.Relay
	challenges challenges.File

	sessionID string
	now       func() time.Time
}

// New validates cfg and opens everything the commands share. Log lines go to
// cfg.LogPath, or to logOut when no path is set.
func New(cfg Config, logOut io.Writer) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := telemetry.NewJSONLogger(cfg.LogPath, logOut)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	file, err := challenges.Load(cfg.Challenges)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	a := &App{
		cfg:        cfg,
		logger:     logger,
		challenges: file,
		sessionID:  uuid.NewString(),
		now:        time.Now,
		relay: relay.New(relay.Options{
			Interpreter: cfg.Relay.Interpreter,
			Script:      cfg.Relay.Script,
			Dir:         cfg.Relay.Dir,
		}),
	}

	if cfg.AuditDB != "" {
		store, err := state.NewSQLite(cfg.AuditDB)
		if err != nil {
			_ = logger.Close()
			return nil, err
		}
		if err := store.EnsureSchema(context.Background()); err != nil {
			_ = store.Close()
			_ = logger.Close()
			return nil, err
		}
		a.store = store
	}
	return a, nil
}

func (a *App) SessionID() string { return a.sessionID }

// Serve runs the relay service until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.cfg.Addr(), err)
	}
	return a.serve(ctx, ln)
}

func (a *App) serve(ctx context.Context, ln net.Listener) error {
	if err := a.relay.Check(ctx); err != nil {
		a.logger.Error("relay.check_failed", map[string]any{
			"error":       err.Error(),
			"interpreter": a.relay.Interpreter(),
		})
	}

	handler := server.New(server.Options{
		Relay:      a.relay,
		Checker:    a.relay,
		StaticDir:  a.cfg.StaticDir,
		Production: a.cfg.Production(),
		Logger:     a.logger,
		Ledger:     a.ledger(),
	}).Handler()
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("http.listen", map[string]any{
			"addr":       ln.Addr().String(),
			"production": a.cfg.Production(),
			"static_dir": a.cfg.StaticDir,
		})
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("http.shutdown", nil)
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Play runs the terminal client until the user quits or ctx is cancelled.
func (a *App) Play(ctx context.Context) error {
	a.startSession(ctx, "tui")
	sender := a.sender()
	if a.cfg.APIURL == "" {
		if err := a.relay.Check(ctx); err != nil {
			a.logger.Error("relay.check_failed", map[string]any{
				"error":       err.Error(),
				"interpreter": a.relay.Interpreter(),
			})
		}
	}

	view := ui.New(ui.Options{
		Challenges:   a.challenges,
		Sender:       sender,
		Logger:       a.logger,
		StyleVariant: a.cfg.UI.StyleVariant,
		MotionLevel:  a.cfg.UI.MotionLevel,
		ASCIIOnly:    a.cfg.UI.ASCIIOnly,
		OnEvent:      a.recordEvent,
	})
	return view.Run(ctx)
}

// Ask sends one message with no history and writes the relay's raw reply.
func (a *App) Ask(ctx context.Context, message string, out io.Writer) error {
	a.startSession(ctx, "cli")
	reply, err := a.sender().Send(ctx, message, nil)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s\n", reply.Raw)
	return err
}

// Stats prints the audit ledger summary.
func (a *App) Stats(ctx context.Context, out io.Writer) error {
	if a.store == nil {
		return ErrLedgerDisabled
	}
	sum, err := a.store.GetSummary(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "sessions:        %s\n", humanize.Comma(int64(sum.Sessions)))
	fmt.Fprintf(out, "relay calls:     %s (%d failed, %d approved)\n", humanize.Comma(int64(sum.RelayCalls)), sum.RelayFailures, sum.Approvals)
	fmt.Fprintf(out, "arcade failures: %s\n", humanize.Comma(int64(sum.ArcadeFailures)))
	fmt.Fprintf(out, "completions:     %s\n", humanize.Comma(int64(sum.Completions)))

	last, err := a.store.GetLastSession(ctx)
	if err != nil {
		return err
	}
	if last != nil {
		fmt.Fprintf(out, "last session:    %s (%s, started %s, %d events, %d relay calls)\n",
			last.SessionID, firstNonEmpty(last.Surface, "unknown"), humanize.Time(last.StartTS), last.Events, last.RelayCalls)
	}
	return nil
}

func (a *App) Close() {
	if a.store != nil {
		_ = a.store.Close()
	}
	_ = a.logger.Close()
}

// sender is the relay the client-side commands talk to: a running service
// when APIURL is set, the script in-process otherwise.
func (a *App) sender() ui.Sender {
	var next ui.Sender = a.relay
	if a.cfg.APIURL != "" {
		c := relay.NewClient(a.cfg.APIURL)
		c.Session = a.sessionID
		next = c
	}
	return &auditedSender{next: next, app: a, remote: a.cfg.APIURL != ""}
}

func (a *App) ledger() state.Store {
	if a.store == nil {
		return nil
	}
	return a.store
}

func (a *App) startSession(ctx context.Context, surface string) {
	a.logger.Info("app.start", map[string]any{"session": a.sessionID, "surface": surface})
	if a.store == nil {
		return
	}
	err := a.store.StartSession(ctx, state.Session{SessionID: a.sessionID, Surface: surface, StartTS: a.now()})
	if err != nil {
		a.logger.Error("ledger.record_failed", map[string]any{"error": err.Error()})
	}
}

func (a *App) recordEvent(ev ui.Event) {
	if a.store == nil {
		return
	}
	err := a.store.RecordChallengeEvent(context.Background(), state.ChallengeEvent{
		SessionID: a.sessionID,
		Stage:     string(ev.Stage),
		Event:     ledgerEvent(ev.Kind),
		Completed: ev.Progress.Completed,
		Failures:  ev.Progress.Failures,
		TS:        a.now(),
	})
	if err != nil {
		a.logger.Error("ledger.record_failed", map[string]any{"error": err.Error()})
	}
}

func ledgerEvent(k ui.EventKind) string {
	switch k {
	case ui.EventSucceeded:
		return state.EventSucceeded
	case ui.EventReset:
		return state.EventReset
	default:
		return state.EventFailed
	}
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
