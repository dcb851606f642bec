// Package cel evaluates route-condition expressions written in CEL.
package cel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/cel-go/cel"
)

// maxExpressionLength is the maximum allowed length for a condition expression.
const maxExpressionLength = 1024

// maxCostBudget is the CEL runtime cost limit for a single evaluation.
const maxCostBudget = 100_000

// evalTimeout bounds a single evaluation so a pathological expression cannot
// hang a navigation decision.
const evalTimeout = 2 * time.Second

// interruptCheckFreq is how often (in comprehension iterations) context
// cancellation is checked.
const interruptCheckFreq = 100

// Evaluator compiles and evaluates route-condition expressions. Compiled
// programs are cached by expression text, so re-evaluating the same policy
// rule across navigations costs one map lookup.
type Evaluator struct {
	env *cel.Env

	mu       sync.Mutex
	programs map[string]cel.Program
}

// NewEvaluator creates an evaluator with the route-condition environment:
// path, role, email, and employee_id are in scope as strings.
func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("path", cel.StringType),
		cel.Variable("role", cel.StringType),
		cel.Variable("email", cel.StringType),
		cel.Variable("employee_id", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create condition environment: %w", err)
	}
	return &Evaluator{env: env, programs: make(map[string]cel.Program)}, nil
}

// ValidateExpression checks that a condition expression is syntactically
// valid and within the safety limits. Used when loading a route policy so a
// broken condition fails at startup, not at navigation time.
func (e *Evaluator) ValidateExpression(expr string) error {
	if expr == "" {
		return errors.New("expression is empty")
	}
	if len(expr) > maxExpressionLength {
		return fmt.Errorf("expression too long: %d characters (max %d)", len(expr), maxExpressionLength)
	}
	_, err := e.compile(expr)
	return err
}

// Evaluate runs the expression against the request variables. Returns an
// error when the expression fails to compile, exceeds its cost budget, or
// does not produce a boolean.
func (e *Evaluator) Evaluate(ctx context.Context, expr string, vars map[string]any) (bool, error) {
	prg, err := e.compile(expr)
	if err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, evalTimeout)
	defer cancel()

	result, _, err := prg.ContextEval(ctx, vars)
	if err != nil {
		return false, fmt.Errorf("evaluation failed: %w", err)
	}

	boolResult, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression did not return a boolean, got %T", result.Value())
	}
	return boolResult, nil
}

func (e *Evaluator) compile(expr string) (cel.Program, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if prg, ok := e.programs[expr]; ok {
		return prg, nil
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation failed: %w", issues.Err())
	}

	prg, err := e.env.Program(ast,
		cel.EvalOptions(cel.OptOptimize),
		cel.CostLimit(maxCostBudget),
		cel.InterruptCheckFrequency(interruptCheckFreq),
	)
	if err != nil {
		return nil, fmt.Errorf("program creation failed: %w", err)
	}

	e.programs[expr] = prg
	return prg, nil
}
