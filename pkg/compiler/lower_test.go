package compiler

import (
	"strings"
	"testing"

	"lolc/pkg/rpn"
)

func lowerSource(t *testing.T, input string) []rpn.Instr {
	t.Helper()
	tree, root := parseSource(t, input)
	prog, err := Lower(tree, root)
	if err != nil {
		t.Fatalf("Lower failed: %v", err)
	}
	return prog
}

func expectProgram(t *testing.T, got []rpn.Instr, want string) {
	t.Helper()
	wantProg, err := rpn.Parse(want)
	if err != nil {
		t.Fatalf("bad expectation: %v", err)
	}
	if rpn.Format(got) != rpn.Format(wantProg) {
		t.Errorf("program mismatch:\ngot:\n%swant:\n%s", rpn.Format(got), rpn.Format(wantProg))
	}
}

func TestLowerLambda(t *testing.T) {
	prog := lowerSource(t, "(lambda (x) x)")
	expectProgram(t, prog, `
		lambda 1
		scope_begin 1
		lambda_context_load
		bind x
		get x
		scope_end 1
		lambda_ret
	`)
}

func TestLowerNumberAndCall(t *testing.T) {
	prog := lowerSource(t, "(+ x 1)")
	expectProgram(t, prog, `
		get x
		push_number 1
		get +
		call 2
	`)
}

func TestLowerNegativeNumber(t *testing.T) {
	prog := lowerSource(t, "-42")
	expectProgram(t, prog, "push_number -42")
}

func TestLowerString(t *testing.T) {
	prog := lowerSource(t, `(put-str "hi")`)
	expectProgram(t, prog, `
		str 9
		get put-str
		call 1
	`)
}

// The branch targets are back-patched: condition_start jumps to the
// condition_else index, condition_else to the condition_end index.
func TestLowerConditional(t *testing.T) {
	prog := lowerSource(t, "(if 1 2 3)")
	expectProgram(t, prog, `
		scope_begin 0
		push_number 1
		scope_end 0
		condition_start 7
		scope_begin 4
		push_number 2
		scope_end 4
		condition_else 11
		scope_begin 8
		push_number 3
		scope_end 8
		condition_end
	`)
}

func TestLowerLet(t *testing.T) {
	prog := lowerSource(t, "(let (x 1) x)")
	expectProgram(t, prog, `
		scope_begin 0
		push_number 0
		bind x
		push_number 1
		set x
		get x
		scope_end 0
	`)
}

// lambda, if and let are only forms at the head of a call.
func TestLowerFormNameAsArgument(t *testing.T) {
	prog := lowerSource(t, "(f if)")
	expectProgram(t, prog, `
		get if
		get f
		call 1
	`)
}

func TestLowerNestedLambdaCall(t *testing.T) {
	prog := lowerSource(t, "(lambda (x) ((lambda (a b) (+ a b)) x 1))")
	expectProgram(t, prog, `
		lambda 1
		scope_begin 1
		lambda_context_load
		bind x
		get x
		push_number 1
		lambda 2
		scope_begin 7
		lambda_context_load
		bind a
		bind b
		get a
		get b
		get +
		call 2
		scope_end 7
		lambda_ret
		call 2
		scope_end 1
		lambda_ret
	`)
}

func TestLowerErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"EmptyCall", "()", "empty call detected"},
		{"EmptyCallNested", "(+ () 1)", "empty call detected"},
		{"LambdaParamsNotAList", "(lambda x x)", "must be a list"},
		{"LambdaParamNotASymbol", `(lambda ("s") 1)`, "must be a symbol"},
		{"LambdaMissingBody", "(lambda (x))", "lambda needs a parameter list and a body"},
		{"IfMissingBranch", "(if 1 2)", "if needs a condition and two branches"},
		{"LetOddBindings", "(let (x) x)", "name and value pairs"},
		{"LetBindingNameNotASymbol", `(let ("s" 2) 3)`, "must be a symbol"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, root := parseSource(t, tt.input)
			_, err := Lower(tree, root)
			if err == nil {
				t.Fatalf("Lower(%q) succeeded, want error", tt.input)
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("Lower(%q) error = %v, want it to mention %q", tt.input, err, tt.message)
			}
		})
	}
}

// Scope ids are the index of their scope_begin, so every pair is unique
// and properly nested.
func TestLowerScopeBrackets(t *testing.T) {
	prog := lowerSource(t, "(lambda (n) (if (< n 2) n (let (m 7) (+ n m))))")
	if err := rpn.CheckScopes(prog); err != nil {
		t.Errorf("CheckScopes failed: %v", err)
	}
	if _, err := rpn.MatchLambdas(prog); err != nil {
		t.Errorf("MatchLambdas failed: %v", err)
	}
}
