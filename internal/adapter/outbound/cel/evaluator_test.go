package cel

import (
	"context"
	"strings"
	"testing"
)

func TestEvaluate(t *testing.T) {
	t.Parallel()

	eval, err := NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}

	vars := map[string]any{
		"path":        "/hr/payroll/run",
		"role":        "HR",
		"email":       "grace@example.com",
		"employee_id": "EMP001",
	}

	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"role check", `role == "HR"`, true},
		{"role mismatch", `role == "ADMIN"`, false},
		{"email suffix", `email.endsWith("@example.com")`, true},
		{"path prefix", `path.startsWith("/hr/")`, true},
		{"compound", `role == "HR" && employee_id != ""`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := eval.Evaluate(context.Background(), tt.expr, vars)
			if err != nil {
				t.Fatalf("Evaluate(%q): %v", tt.expr, err)
			}
			if got != tt.want {
				t.Fatalf("Evaluate(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEvaluateNonBoolean(t *testing.T) {
	t.Parallel()

	eval, err := NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}

	_, err = eval.Evaluate(context.Background(), `role + "x"`, map[string]any{
		"path": "/", "role": "HR", "email": "", "employee_id": "",
	})
	if err == nil || !strings.Contains(err.Error(), "boolean") {
		t.Fatalf("err = %v, want non-boolean complaint", err)
	}
}

func TestValidateExpression(t *testing.T) {
	t.Parallel()

	eval, err := NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}

	if err := eval.ValidateExpression(`role == "ADMIN"`); err != nil {
		t.Fatalf("valid expression rejected: %v", err)
	}
	if err := eval.ValidateExpression(""); err == nil {
		t.Fatal("empty expression accepted")
	}
	if err := eval.ValidateExpression(`role ==`); err == nil {
		t.Fatal("malformed expression accepted")
	}
	if err := eval.ValidateExpression(`unknown_var == "x"`); err == nil {
		t.Fatal("undeclared variable accepted")
	}
	if err := eval.ValidateExpression(strings.Repeat("a", maxExpressionLength+1)); err == nil {
		t.Fatal("oversized expression accepted")
	}
}

func TestCompileCaching(t *testing.T) {
	t.Parallel()

	eval, err := NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}

	const expr = `role == "HR"`
	first, err := eval.compile(expr)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	second, err := eval.compile(expr)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if first != second {
		t.Fatal("compiled program was not cached")
	}
}
