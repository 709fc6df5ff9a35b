// Package command provides the subprocess execution facility shared by the
// SDK provisioner, the build invoker, and the device deployer. External tools
// are always driven through the Runner interface so orchestration logic can be
// exercised against recorded fakes.
package command

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Spec describes one subprocess invocation.
type Spec struct {
	// Path is the program to run, either absolute or resolved via PATH.
	Path string
	Args []string

	// Dir is the working directory for the subprocess. Empty means the
	// caller's current directory.
	Dir string

	// Env is the complete environment for the subprocess. Nil means the
	// subprocess inherits the caller's environment unchanged.
	Env []string

	// Stdin, if set, is fed to the subprocess.
	Stdin io.Reader
}

// String renders the invocation the way a user would type it.
func (s Spec) String() string {
	return strings.Join(append([]string{s.Path}, s.Args...), " ")
}

// Runner executes external tools and returns their combined output.
type Runner interface {
	// Run blocks until the subprocess exits. A non-zero exit status is
	// returned as an *ExitError carrying whatever the tool printed.
	Run(ctx context.Context, spec Spec) ([]byte, error)
}

// ExitError reports a subprocess that ran but exited non-zero.
type ExitError struct {
	Command string
	Output  []byte
	Err     error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command %q failed: %v", e.Command, e.Err)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

type execRunner struct{}

// NewRunner returns a Runner backed by os/exec.
func NewRunner() Runner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, spec Spec) ([]byte, error) {
	cmd := exec.CommandContext(ctx, spec.Path, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = spec.Env
	cmd.Stdin = spec.Stdin

	out, err := cmd.CombinedOutput()
	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return out, &ExitError{Command: spec.String(), Output: out, Err: err}
		}
		return out, fmt.Errorf("failed to start %q: %w", spec.String(), err)
	}
	return out, nil
}
