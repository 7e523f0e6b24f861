package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"swampcaptcha/internal/relay"
	"swampcaptcha/internal/state"
	"swampcaptcha/internal/telemetry"
)

const SessionHeader = relay.SessionHeader

const maxBodyBytes = 1 << 20

type Sender interface {
	Send(ctx context.Context, message string, history []relay.Turn) (relay.Reply, error)
}

type Checker interface {
	Check(ctx context.Context) error
}

type Options struct {
	Relay      Sender
	Checker    Checker
	StaticDir  string
	Production bool
	Logger     telemetry.Logger
	// Ledger is optional; nil disables auditing.
	Ledger state.Store
	Now    func() time.Time
}

type Server struct {
	opts Options
}

func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = telemetry.Nop{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Server{opts: opts}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(relay.ShrekPath, s.handleShrek)
	mux.HandleFunc("/healthz", s.handleHealth)
	if s.opts.StaticDir != "" {
		mux.Handle("/", s.static())
	}
	return withCORS(s.withRequestLog(mux))
}

func (s *Server) handleShrek(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req relay.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, relay.ErrorBody{Error: "Invalid JSON body"})
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, relay.ErrorBody{Error: "Message is required"})
		return
	}

	// A client that hangs up does not stop the script; the call still runs
	// to completion and is audited.
	ctx := context.WithoutCancel(r.Context())
	started := s.opts.Now()
	reply, err := s.opts.Relay.Send(ctx, req.Message, req.ConversationHistory)
	elapsed := s.opts.Now().Sub(started)
	session := strings.TrimSpace(r.Header.Get(SessionHeader))

	if err != nil {
		body, outcome := failureBody(err)
		s.opts.Logger.Error("relay."+outcome+"_failed", map[string]any{
			"session":     session,
			"error":       err.Error(),
			"duration_ms": elapsed.Milliseconds(),
		})
		s.audit(ctx, state.RelayCall{SessionID: session, Outcome: outcome, Duration: elapsed, MessageChars: len(req.Message), TS: started})
		writeJSON(w, http.StatusInternalServerError, body)
		return
	}

	s.opts.Logger.Info("relay.ok", map[string]any{
		"session":     session,
		"approved":    reply.Approved,
		"duration_ms": elapsed.Milliseconds(),
	})
	s.audit(ctx, state.RelayCall{SessionID: session, Outcome: state.OutcomeOK, Approved: reply.Approved, Duration: elapsed, MessageChars: len(req.Message), TS: started})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(reply.Raw)
}

// failureBody keeps the error strings the browser client has always seen.
func failureBody(err error) (relay.ErrorBody, string) {
	var rerr *relay.Error
	if !errors.As(err, &rerr) {
		return relay.ErrorBody{Error: "Internal server error", Details: err.Error()}, "internal"
	}
	switch rerr.Kind {
	case relay.KindLaunch:
		return relay.ErrorBody{Error: "Failed to start Python process", Details: rerr.Diagnostic}, state.OutcomeLaunch
	case relay.KindExit:
		return relay.ErrorBody{Error: "Python script execution failed", Details: rerr.Diagnostic}, state.OutcomeExit
	case relay.KindParse:
		return relay.ErrorBody{Error: "Failed to parse Python script output", Output: rerr.Diagnostic}, state.OutcomeParse
	default:
		return relay.ErrorBody{Error: rerr.Message, Details: rerr.Diagnostic}, state.OutcomeRemote
	}
}

func (s *Server) audit(ctx context.Context, call state.RelayCall) {
	if s.opts.Ledger == nil {
		return
	}
	if err := s.opts.Ledger.RecordRelayCall(context.WithoutCancel(ctx), call); err != nil {
		s.opts.Logger.Error("ledger.record_failed", map[string]any{"error": err.Error()})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	body := map[string]any{"ok": true, "relay": "unchecked"}
	if s.opts.Checker != nil {
		if err := s.opts.Checker.Check(r.Context()); err != nil {
			body["relay"] = "unavailable"
			body["error"] = err.Error()
		} else {
			body["relay"] = "ready"
		}
	}
	writeJSON(w, http.StatusOK, body)
}

// static serves the built front end. In production any GET that does not
// name a real file falls back to index.html so client-side routes resolve.
func (s *Server) static() http.Handler {
	root := s.opts.StaticDir
	files := http.FileServer(http.Dir(root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.Production && r.Method == http.MethodGet && !exists(root, r.URL.Path) {
			http.ServeFile(w, r, filepath.Join(root, "index.html"))
			return
		}
		files.ServeHTTP(w, r)
	})
}

func exists(root, urlPath string) bool {
	clean := filepath.FromSlash(filepath.Clean("/" + urlPath))
	info, err := os.Stat(filepath.Join(root, clean))
	if err != nil {
		return false
	}
	if info.IsDir() {
		_, err = os.Stat(filepath.Join(root, clean, "index.html"))
		return err == nil
	}
	return true
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", "GET,HEAD,PUT,PATCH,POST,DELETE")
			if req := r.Header.Get("Access-Control-Request-Headers"); req != "" {
				h.Set("Access-Control-Allow-Headers", req)
				h.Add("Vary", "Access-Control-Request-Headers")
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := s.opts.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.opts.Logger.Info("http.request", map[string]any{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rec.status,
			"duration_ms": s.opts.Now().Sub(started).Milliseconds(),
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
