package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	DefaultInterpreter = "python3"
	DefaultScript      = "shrek.py"
)

type Options struct {
	Interpreter string
	Script      string
	// Dir is the working directory of the child. A relative Script is
	// resolved against it.
	Dir    string
	Env    []string
	Runner Runner
}

// Relay hands one message plus its history to an external script and turns
// what the script printed into a Reply.
type Relay struct {
	opts Options
}

func New(opts Options) *Relay {
	if opts.Interpreter == "" {
		opts.Interpreter = DefaultInterpreter
	}
	if opts.Script == "" {
		opts.Script = DefaultScript
	}
	if opts.Runner == nil {
		opts.Runner = ExecRunner{}
	}
	return &Relay{opts: opts}
}

func (r *Relay) Send(ctx context.Context, message string, history []Turn) (Reply, error) {
	if history == nil {
		history = []Turn{}
	}
	encoded, err := json.Marshal(history)
	if err != nil {
		return Reply{}, fmt.Errorf("encode history: %w", err)
	}

	out, err := r.opts.Runner.Run(ctx, ProcessSpec{
		Program: r.opts.Interpreter,
		Args:    []string{r.opts.Script, message, string(encoded)},
		Dir:     r.opts.Dir,
		Env:     r.opts.Env,
	})
	if err != nil {
		return Reply{}, &Error{
			Kind:       KindLaunch,
			Message:    "failed to start relay process",
			Diagnostic: err.Error(),
			Err:        err,
		}
	}
	if out.ExitCode != 0 {
		diag := strings.TrimSpace(string(out.Stderr))
		if diag == "" {
			// The script reports its own failures as JSON on stdout.
			diag = strings.TrimSpace(string(out.Stdout))
		}
		return Reply{}, &Error{
			Kind:       KindExit,
			Message:    "relay script execution failed",
			Diagnostic: diag,
			ExitCode:   out.ExitCode,
		}
	}
	return ParseReply(out.Stdout)
}

// ParseReply accepts any single JSON value and keeps it verbatim in Raw.
// Known fields are read from an object when their types fit; anything else
// leaves them zero. Output that is not JSON is a parse failure carrying the
// trimmed text.
func ParseReply(stdout []byte) (Reply, error) {
	trimmed := bytes.TrimSpace(stdout)
	if !json.Valid(trimmed) {
		var err error
		if len(trimmed) > 0 {
			var v any
			err = json.Unmarshal(trimmed, &v)
		}
		return Reply{}, parseError(trimmed, err)
	}
	var reply Reply
	var fields map[string]json.RawMessage
	if json.Unmarshal(trimmed, &fields) == nil {
		_ = json.Unmarshal(fields["success"], &reply.Success)
		_ = json.Unmarshal(fields["response"], &reply.Response)
		_ = json.Unmarshal(fields["approved"], &reply.Approved)
		_ = json.Unmarshal(fields["reason"], &reply.Reason)
		_ = json.Unmarshal(fields["error"], &reply.Error)
	}
	reply.Raw = append(json.RawMessage(nil), trimmed...)
	return reply, nil
}

func parseError(output []byte, err error) *Error {
	return &Error{
		Kind:       KindParse,
		Message:    "failed to parse relay script output",
		Diagnostic: string(output),
		Err:        err,
	}
}

// Check reports whether the interpreter is on PATH and the script exists.
func (r *Relay) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := exec.LookPath(r.opts.Interpreter); err != nil {
		return fmt.Errorf("%s not found in PATH", r.opts.Interpreter)
	}
	script := r.ScriptPath()
	info, err := os.Stat(script)
	if err != nil {
		return fmt.Errorf("relay script: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("relay script %s is a directory", script)
	}
	return nil
}

func (r *Relay) ScriptPath() string {
	if filepath.IsAbs(r.opts.Script) || r.opts.Dir == "" {
		return r.opts.Script
	}
	return filepath.Join(r.opts.Dir, r.opts.Script)
}

func (r *Relay) Interpreter() string { return r.opts.Interpreter }
