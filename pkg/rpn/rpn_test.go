package rpn

import (
	"strings"
	"testing"
)

func TestFormatParseRoundTrip(t *testing.T) {
	text := `lambda 1
scope_begin 1
lambda_context_load
bind x
push_number -7
get_by_hops 0
get_captured_by_hops 2
set_captured_by_hops 1
str 14
get +
call 2
condition_start 9
condition_else 12
condition_end
scope_end 1
lambda_ret
`
	prog, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := Format(prog); got != text {
		t.Errorf("round trip mismatch:\ngot:\n%swant:\n%s", got, text)
	}
}

func TestParseSkipsBlanksAndComments(t *testing.T) {
	prog, err := Parse("\n# a comment\n  bind x  \n\n")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(prog) != 1 || prog[0].Op != Bind || prog[0].Name != "x" {
		t.Errorf("prog = %v", prog)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"UnknownOp", "frobnicate 1"},
		{"MissingOperand", "push_number"},
		{"ExtraOperand", "lambda_ret 3"},
		{"BadNumber", "push_number twelve"},
		{"BadArg", "call -1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.text); err == nil {
				t.Errorf("Parse(%q) succeeded, want error", tt.text)
			}
		})
	}
}

func TestDumpCarriesIndices(t *testing.T) {
	prog := []Instr{{Op: Lambda, Arg: 1}, {Op: LambdaRet}}
	dump := Dump(prog)
	if !strings.Contains(dump, "0  lambda 1") || !strings.Contains(dump, "1  lambda_ret") {
		t.Errorf("dump = %q", dump)
	}
}

func TestMatchLambdas(t *testing.T) {
	prog, err := Parse(`
		lambda 1
		lambda 2
		lambda_ret
		lambda_ret
	`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	ends, err := MatchLambdas(prog)
	if err != nil {
		t.Fatalf("MatchLambdas failed: %v", err)
	}
	if ends[0] != 3 || ends[1] != 2 {
		t.Errorf("ends = %v", ends)
	}
}

func TestMatchLambdasErrors(t *testing.T) {
	if _, err := MatchLambdas([]Instr{{Op: LambdaRet}}); err == nil {
		t.Error("stray lambda_ret accepted")
	}
	if _, err := MatchLambdas([]Instr{{Op: Lambda, Arg: 1}}); err == nil {
		t.Error("unterminated lambda accepted")
	}
}

func TestCheckScopes(t *testing.T) {
	good := []Instr{
		{Op: ScopeBegin, Arg: 0},
		{Op: ScopeBegin, Arg: 1},
		{Op: ScopeEnd, Arg: 1},
		{Op: ScopeEnd, Arg: 0},
	}
	if err := CheckScopes(good); err != nil {
		t.Errorf("CheckScopes rejected a well-formed program: %v", err)
	}

	crossed := []Instr{
		{Op: ScopeBegin, Arg: 0},
		{Op: ScopeBegin, Arg: 1},
		{Op: ScopeEnd, Arg: 0},
		{Op: ScopeEnd, Arg: 1},
	}
	if err := CheckScopes(crossed); err == nil {
		t.Error("CheckScopes accepted crossed scopes")
	}

	unclosed := []Instr{{Op: ScopeBegin, Arg: 0}}
	if err := CheckScopes(unclosed); err == nil {
		t.Error("CheckScopes accepted an unclosed scope")
	}
}
