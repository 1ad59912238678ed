package approval

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/aretw0/digest/pkg/ports"
)

// ErrNotInteractive is returned when the console approver has no terminal.
var ErrNotInteractive = errors.New("console approval requires an interactive terminal")

// ConsoleApprover shows the draft and asks the operator for a verdict.
type ConsoleApprover struct {
	in          io.Reader
	out         io.Writer
	interactive func() bool
}

var _ ports.Approver = (*ConsoleApprover)(nil)

// ConsoleOption configures the ConsoleApprover.
type ConsoleOption func(*ConsoleApprover)

// WithIO replaces stdin/stdout and skips the terminal check.
func WithIO(in io.Reader, out io.Writer) ConsoleOption {
	return func(c *ConsoleApprover) {
		c.in = in
		c.out = out
		c.interactive = func() bool { return true }
	}
}

// Console returns an approver that prompts on the controlling terminal.
func Console(opts ...ConsoleOption) *ConsoleApprover {
	c := &ConsoleApprover{
		in:  os.Stdin,
		out: os.Stdout,
		interactive: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ConsoleApprover) Approve(ctx context.Context, content string) (bool, error) {
	if !c.interactive() {
		return false, ErrNotInteractive
	}

	fmt.Fprintf(c.out, "\n--- Draft ---\n%s\n-------------\n", content)

	answers := make(chan string, 1)
	errs := make(chan error, 1)
	reader := bufio.NewReader(c.in)

	for {
		fmt.Fprint(c.out, "Approve this draft? [y/n]: ")

		go func() {
			line, err := reader.ReadString('\n')
			if err != nil && line == "" {
				errs <- err
				return
			}
			answers <- line
		}()

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case err := <-errs:
			if errors.Is(err, io.EOF) {
				return false, fmt.Errorf("no answer: %w", err)
			}
			return false, err
		case line := <-answers:
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "y", "yes":
				return true, nil
			case "n", "no":
				return false, nil
			}
			fmt.Fprintln(c.out, "Please answer 'y' or 'n'.")
		}
	}
}
