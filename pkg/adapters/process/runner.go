package process

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/aretw0/digest/pkg/ports"
)

// DefaultGracePeriod is how long a reviewer gets to exit after an interrupt
// before it is killed.
const DefaultGracePeriod = 5 * time.Second

// Exit codes understood by Approver.
const (
	ExitApprove = 0
	ExitReject  = 1
)

// Approver delegates the approval decision to an external command.
//
// The draft is written to the command's stdin. Exit code 0 approves and 1
// rejects; any other outcome is an error. A command may instead print a JSON
// verdict such as {"approved": true, "reason": "..."} and exit 0.
type Approver struct {
	command string
	args    []string
	env     []string
	dir     string
	timeout time.Duration
	grace   time.Duration
}

var _ ports.Approver = (*Approver)(nil)

// Option configures the Approver.
type Option func(*Approver)

// WithEnv adds KEY=VALUE pairs to the command environment.
func WithEnv(env map[string]string) Option {
	return func(a *Approver) {
		for k, v := range env {
			a.env = append(a.env, fmt.Sprintf("%s=%s", k, v))
		}
	}
}

// WithBaseDir sets the working directory for the command.
func WithBaseDir(dir string) Option {
	return func(a *Approver) {
		a.dir = dir
	}
}

// WithTimeout bounds a single review. Zero means no limit beyond the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(a *Approver) {
		a.timeout = d
	}
}

// WithGracePeriod overrides DefaultGracePeriod.
func WithGracePeriod(d time.Duration) Option {
	return func(a *Approver) {
		a.grace = d
	}
}

// NewApprover creates an Approver running command with args.
// Arguments are fixed at construction: the draft never reaches the command line.
func NewApprover(command string, args []string, opts ...Option) (*Approver, error) {
	if strings.TrimSpace(command) == "" {
		return nil, errors.New("approval command cannot be empty")
	}
	a := &Approver{
		command: command,
		args:    args,
		grace:   DefaultGracePeriod,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// String returns the command line.
func (a *Approver) String() string {
	return strings.TrimSpace(a.command + " " + strings.Join(a.args, " "))
}

type verdict struct {
	Approved *bool  `json:"approved"`
	Reason   string `json:"reason"`
}

// Approve runs the command once for content.
func (a *Approver) Approve(ctx context.Context, content string) (bool, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, a.command, a.args...)
	cmd.Dir = a.dir
	cmd.Env = append(cmd.Environ(), a.env...)
	cmd.Env = append(cmd.Env, fmt.Sprintf("DIGEST_CONTENT_LENGTH=%d", len(content)))
	cmd.Stdin = strings.NewReader(content)

	// Ask politely first; WaitDelay kills the process if it ignores the signal.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = a.grace

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, fmt.Errorf("approval command %q: %w", a.command, ctxErr)
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr) && exitErr.ExitCode() == ExitReject:
		return false, nil
	default:
		return false, fmt.Errorf("execution failed: %v. Stderr: %s", err, strings.TrimSpace(stderr.String()))
	}

	trimmed := strings.TrimSpace(stdout.String())
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		var v verdict
		if jsonErr := json.Unmarshal([]byte(trimmed), &v); jsonErr == nil && v.Approved != nil {
			return *v.Approved, nil
		}
	}
	return true, nil
}
