package approval

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/aretw0/digest/pkg/ports"
)

// RuleEnv is the environment a rule expression is evaluated against.
type RuleEnv struct {
	Content    string `expr:"content"`
	Length     int    `expr:"length"`
	Words      int    `expr:"words"`
	Lines      int    `expr:"lines"`
	Paragraphs int    `expr:"paragraphs"`
}

// RuleApprover approves content when a boolean expression holds.
// The compiled program is immutable and safe for concurrent use.
type RuleApprover struct {
	source  string
	program *vm.Program
}

var _ ports.Approver = (*RuleApprover)(nil)

// Rule compiles an expr-lang expression such as
//
//	words >= 150 && !(content contains "TODO")
//
// The expression must evaluate to a bool.
func Rule(expression string) (*RuleApprover, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, fmt.Errorf("empty approval rule")
	}
	prg, err := expr.Compile(expression, expr.Env(RuleEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("approval rule compile error in %q: %w", expression, err)
	}
	return &RuleApprover{source: expression, program: prg}, nil
}

// String returns the rule source.
func (r *RuleApprover) String() string {
	return r.source
}

func (r *RuleApprover) Approve(ctx context.Context, content string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	out, err := expr.Run(r.program, NewRuleEnv(content))
	if err != nil {
		return false, fmt.Errorf("approval rule evaluation failed for %q: %w", r.source, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

// NewRuleEnv derives the rule variables from content.
func NewRuleEnv(content string) RuleEnv {
	env := RuleEnv{
		Content: content,
		Length:  len([]rune(content)),
		Words:   len(strings.FieldsFunc(content, unicode.IsSpace)),
	}
	if content != "" {
		env.Lines = strings.Count(content, "\n") + 1
	}
	for _, p := range strings.Split(content, "\n\n") {
		if strings.TrimSpace(p) != "" {
			env.Paragraphs++
		}
	}
	return env
}
