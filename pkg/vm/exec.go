package vm

import (
	"fmt"
	"io"
	"strings"

	"lolc/pkg/rpn"
)

// scopeSave is a scope_begin snapshot: the bind-array depth and the
// closure-chain tip, both restored at the matching scope_end.
type scopeSave struct {
	binds int
	ctx   *Cell
}

// RunProgram executes a resolved program the way the emitted C main
// does: argc is pushed, the top-level stream runs to produce the
// outermost lambda, and that value is invoked. The value left in top
// when the outermost body returns is the program's result.
func (m *VM) RunProgram(prog []rpn.Instr, src []byte) (Value, error) {
	if err := m.pushNumber(int64(len(m.Args))); err != nil {
		return Value{}, err
	}
	return m.exec(prog, src, true)
}

// Eval executes the top-level stream and returns the value it leaves in
// top, without the argc push or the final invocation. The REPL uses it
// to evaluate bare expressions.
func (m *VM) Eval(prog []rpn.Instr, src []byte) (Value, error) {
	return m.exec(prog, src, false)
}

// Run executes an already resolved program on a fresh VM with program
// semantics (see RunProgram).
func Run(prog []rpn.Instr, src []byte, args []string, output io.Writer) (Value, error) {
	return New(args, output).RunProgram(prog, src)
}

func (m *VM) exec(prog []rpn.Instr, src []byte, invokeAtEnd bool) (Value, error) {
	ends, err := rpn.MatchLambdas(prog)
	if err != nil {
		return Value{}, err
	}

	var calls []int
	var scopes []scopeSave
	pc := 0
	invoked := false

	for steps := 0; ; steps++ {
		if steps >= execStepLimit {
			return Value{}, m.fatal("step limit exceeded")
		}
		if pc >= len(prog) {
			if !invokeAtEnd || invoked {
				return m.Top, nil
			}
			invoked = true
			npc, err := m.invoke(len(prog), &calls)
			if err != nil {
				return Value{}, err
			}
			pc = npc
			continue
		}

		in := prog[pc]
		switch in.Op {
		case rpn.Lambda:
			// A lambda in the instruction stream is a definition: the
			// value captures the current closure chain and execution
			// skips to after the body.
			if err := m.pushLambda(pc); err != nil {
				return Value{}, err
			}
			pc = ends[pc] + 1

		case rpn.LambdaContextLoad:
			m.Context = m.Top.Ctx
			if err := m.drop(); err != nil {
				return Value{}, err
			}
			pc++

		case rpn.LambdaRet:
			if len(calls) == 0 {
				return Value{}, m.fatal("return outside a call")
			}
			pc = calls[len(calls)-1]
			calls = calls[:len(calls)-1]

		case rpn.ScopeBegin:
			scopes = append(scopes, scopeSave{binds: m.BindsIndex, ctx: m.Context})
			pc++

		case rpn.ScopeEnd:
			if len(scopes) == 0 {
				return Value{}, m.fatal("scope end without a scope")
			}
			save := scopes[len(scopes)-1]
			scopes = scopes[:len(scopes)-1]
			m.BindsIndex = save.binds
			m.Context = save.ctx
			pc++

		case rpn.ConditionStart:
			taken := m.Top.Num != 0
			if err := m.drop(); err != nil {
				return Value{}, err
			}
			if taken {
				pc++
			} else {
				pc = int(in.Arg) + 1
			}

		case rpn.ConditionElse:
			// Reached by falling out of the then-branch: skip the else.
			pc = int(in.Arg)

		case rpn.ConditionEnd:
			pc++

		case rpn.Bind:
			if err := m.bind(); err != nil {
				return Value{}, err
			}
			pc++

		case rpn.BindCaptured:
			if err := m.bindCaptured(); err != nil {
				return Value{}, err
			}
			pc++

		case rpn.GetByHops:
			if err := m.get(in.Arg); err != nil {
				return Value{}, err
			}
			pc++

		case rpn.SetByHops:
			if err := m.set(in.Arg); err != nil {
				return Value{}, err
			}
			pc++

		case rpn.GetCapturedByHops:
			if err := m.getCaptured(in.Arg); err != nil {
				return Value{}, err
			}
			pc++

		case rpn.SetCapturedByHops:
			if err := m.setCaptured(in.Arg); err != nil {
				return Value{}, err
			}
			pc++

		case rpn.PushNumber:
			if err := m.pushNumber(in.Num); err != nil {
				return Value{}, err
			}
			pc++

		case rpn.Str:
			if err := m.pushString(decodeStringLiteral(src, in.Arg)); err != nil {
				return Value{}, err
			}
			pc++

		case rpn.Get:
			// Post-resolution, a surviving get is a built-in reference.
			if !IsBuiltin(in.Name) {
				return Value{}, m.fatal("unknown primitive: " + in.Name)
			}
			if err := m.pushBuiltin(in.Name); err != nil {
				return Value{}, err
			}
			pc++

		case rpn.Call:
			npc, err := m.invoke(pc+1, &calls)
			if err != nil {
				return Value{}, err
			}
			pc = npc

		default:
			return Value{}, m.fatal(fmt.Sprintf("illegal instruction: %s", in))
		}
	}
}

// invoke calls the value in top. A lambda transfers control into its
// body and records ret as the return address; a built-in completes
// immediately. Invoking a number or a string is the co-designed
// runtime's fatal, reported with the value's own kind.
func (m *VM) invoke(ret int, calls *[]int) (int, error) {
	switch m.Top.Kind {
	case KindLambda:
		*calls = append(*calls, ret)
		return m.Top.Body + 1, nil
	case KindBuiltin:
		if err := m.callBuiltin(m.Top.Builtin); err != nil {
			return 0, err
		}
		return ret, nil
	default:
		return 0, m.fatal("attempted to invoke a " + m.Top.Kind.String())
	}
}

// execStepLimit bounds a single execution, so a diverging test program
// fails instead of hanging the suite.
const execStepLimit = 50_000_000

// decodeStringLiteral materializes the string literal whose opening
// quote sits at off. The compiler carries escapes into the C unit
// verbatim; here the common C escapes are interpreted and an unknown
// escape is the character itself.
func decodeStringLiteral(src []byte, off uint32) string {
	var sb strings.Builder
	i := off + 1
	for i < uint32(len(src)) && src[i] != '"' {
		b := src[i]
		if b == '\\' && i+1 < uint32(len(src)) {
			i++
			switch src[i] {
			case 'n':
				b = '\n'
			case 't':
				b = '\t'
			case 'r':
				b = '\r'
			case '0':
				b = 0
			default:
				b = src[i]
			}
		}
		sb.WriteByte(b)
		i++
	}
	return sb.String()
}
