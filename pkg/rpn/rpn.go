package rpn

import "fmt"

// Op identifies a reverse-Polish instruction.
type Op int

const (
	Lambda            Op = iota // open a function body; payload is the formal count
	LambdaContextLoad           // at entry, restore the closure chain from top
	LambdaRet                   // close a function body

	ScopeBegin // payload is the matching scope id
	ScopeEnd

	ConditionStart // payload is the index of the matching condition_else
	ConditionElse  // payload is the index of the matching condition_end
	ConditionEnd

	// Name-based references, rewritten by the resolution passes.
	Bind
	BindCaptured
	Set
	Get
	SetCaptured
	GetCaptured

	// Hop-based references, the only references left after resolution.
	SetByHops
	GetByHops
	SetCapturedByHops
	GetCapturedByHops

	PushNumber // payload is the literal
	Call       // payload is the arity
	Str        // payload is the source offset of the opening quote
	Placeholder
)

var opNames = [...]string{
	Lambda:            "lambda",
	LambdaContextLoad: "lambda_context_load",
	LambdaRet:         "lambda_ret",
	ScopeBegin:        "scope_begin",
	ScopeEnd:          "scope_end",
	ConditionStart:    "condition_start",
	ConditionElse:     "condition_else",
	ConditionEnd:      "condition_end",
	Bind:              "bind",
	BindCaptured:      "bind_captured",
	Set:               "set",
	Get:               "get",
	SetCaptured:       "set_captured",
	GetCaptured:       "get_captured",
	SetByHops:         "set_by_hops",
	GetByHops:         "get_by_hops",
	SetCapturedByHops: "set_captured_by_hops",
	GetCapturedByHops: "get_captured_by_hops",
	PushNumber:        "push_number",
	Call:              "call",
	Str:               "str",
	Placeholder:       "placeholder",
}

func (op Op) String() string {
	if int(op) >= 0 && int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// payloadKind says how an op's payload is encoded in the Instr.
type payloadKind int

const (
	payloadNone payloadKind = iota
	payloadName             // Name: a symbol
	payloadNum              // Num: a 64-bit literal
	payloadArg              // Arg: count, scope id, branch target, hop count or offset
)

func payloadOf(op Op) payloadKind {
	switch op {
	case Bind, BindCaptured, Set, Get, SetCaptured, GetCaptured:
		return payloadName
	case PushNumber:
		return payloadNum
	case Lambda, ScopeBegin, ScopeEnd, ConditionStart, ConditionElse,
		SetByHops, GetByHops, SetCapturedByHops, GetCapturedByHops, Call, Str:
		return payloadArg
	}
	return payloadNone
}

// Instr is one reverse-Polish instruction. Only the payload field named by
// the op's payload kind is meaningful.
type Instr struct {
	Op   Op
	Num  int64
	Arg  uint32
	Name string
}

func (in Instr) String() string {
	switch payloadOf(in.Op) {
	case payloadName:
		return fmt.Sprintf("%s %s", in.Op, in.Name)
	case payloadNum:
		return fmt.Sprintf("%s %d", in.Op, in.Num)
	case payloadArg:
		return fmt.Sprintf("%s %d", in.Op, in.Arg)
	}
	return in.Op.String()
}

// MatchLambdas pairs every lambda with its lambda_ret and returns the
// start-index to end-index mapping. The code generator uses it to skip
// nested bodies and the executor uses it to skip nested definitions.
func MatchLambdas(prog []Instr) (map[int]int, error) {
	ends := make(map[int]int)
	var open []int
	for i, in := range prog {
		switch in.Op {
		case Lambda:
			open = append(open, i)
		case LambdaRet:
			if len(open) == 0 {
				return nil, fmt.Errorf("lambda_ret at index %d without an open lambda", i)
			}
			ends[open[len(open)-1]] = i
			open = open[:len(open)-1]
		}
	}
	if len(open) != 0 {
		return nil, fmt.Errorf("lambda at index %d is never closed", open[len(open)-1])
	}
	return ends, nil
}

// CheckScopes verifies that scope_begin/scope_end pairs nest properly and
// carry matching ids.
func CheckScopes(prog []Instr) error {
	var open []Instr
	for i, in := range prog {
		switch in.Op {
		case ScopeBegin:
			open = append(open, in)
		case ScopeEnd:
			if len(open) == 0 {
				return fmt.Errorf("scope_end at index %d without an open scope", i)
			}
			begin := open[len(open)-1]
			if begin.Arg != in.Arg {
				return fmt.Errorf("scope_end at index %d has id %d, open scope has id %d", i, in.Arg, begin.Arg)
			}
			open = open[:len(open)-1]
		}
	}
	if len(open) != 0 {
		return fmt.Errorf("scope %d is never closed", open[len(open)-1].Arg)
	}
	return nil
}
