package relay

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Output is what a finished process left behind.
type Output struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner starts a process and waits for it. A non-nil error means the process
// never ran; a non-zero exit is reported through Output.ExitCode.
type Runner interface {
	Run(ctx context.Context, spec ProcessSpec) (Output, error)
}

type ProcessSpec struct {
	Program string
	Args    []string
	Dir     string
	Env     []string
}

type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, spec ProcessSpec) (Output, error) {
	cmd := exec.CommandContext(ctx, spec.Program, spec.Args...)
	cmd.Dir = spec.Dir
	if len(spec.Env) > 0 {
		cmd.Env = spec.Env
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return out, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}
	return out, err
}
