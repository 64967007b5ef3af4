package compiler

import (
	"fmt"
	"sort"
	"strings"

	"lolc/pkg/rpn"
)

// Generate emits the C translation unit for a resolved program: one
// function and static descriptor per lambda, innermost first so no
// forward declarations are needed, then the main driver.
func Generate(prog []rpn.Instr, src []byte) (string, error) {
	if err := rpn.CheckScopes(prog); err != nil {
		return "", err
	}
	ends, err := rpn.MatchLambdas(prog)
	if err != nil {
		return "", err
	}

	g := &generator{prog: prog, src: src, ends: ends, nums: make(map[int]int)}
	starts := make([]int, 0, len(ends))
	for start := range ends {
		starts = append(starts, start)
	}
	sort.Ints(starts)
	for k, start := range starts {
		g.nums[start] = k
	}

	g.out.WriteString("#include \"support.h\"\n\n")
	// A nested lambda starts after its parent, so reverse appearance
	// order emits every lambda before its first reference.
	for i := len(starts) - 1; i >= 0; i-- {
		if err := g.emitLambda(starts[i]); err != nil {
			return "", err
		}
	}
	if err := g.emitMain(); err != nil {
		return "", err
	}
	return g.out.String(), nil
}

type generator struct {
	prog []rpn.Instr
	src  []byte
	out  strings.Builder
	ends map[int]int // lambda index -> lambda_ret index
	nums map[int]int // lambda index -> lambda number
}

func (g *generator) emitf(format string, args ...any) {
	fmt.Fprintf(&g.out, "    "+format+"\n", args...)
}

func (g *generator) emitLambda(start int) error {
	k := g.nums[start]
	fmt.Fprintf(&g.out, "void genLambda%d() {\n", k)
	if err := g.emitBody(start+1, g.ends[start]); err != nil {
		return err
	}
	g.out.WriteString("}\n")
	fmt.Fprintf(&g.out, "struct ManagedType lambda_type_%d = { \"lambda_%d\", (const void*)genLambda%d };\n\n", k, k, k)
	return nil
}

// emitMain emits the driver: program arguments are published, argc is
// pushed as the outermost argument, the top-level stream produces the
// outermost lambda, and the result of invoking it is the exit status.
func (g *generator) emitMain() error {
	g.out.WriteString("int main(int argc, char **argv) {\n")
	g.emitf("program_args = argv;")
	g.emitf("program_args_count = argc;")
	g.emitf("supPushNumber(argc);")
	if err := g.emitBody(0, len(g.prog)); err != nil {
		return err
	}
	g.emitf("supCall();")
	g.emitf("return (int)top.v.number;")
	g.out.WriteString("}\n")
	return nil
}

// emitBody emits straight-line code for prog[from:to]. A nested lambda
// contributes only a supPushLambda of its descriptor; its body is
// emitted in its own pass.
func (g *generator) emitBody(from, to int) error {
	for pc := from; pc < to; pc++ {
		in := g.prog[pc]
		switch in.Op {
		case rpn.Lambda:
			g.emitf("supPushLambda(&lambda_type_%d);", g.nums[pc])
			pc = g.ends[pc]
		case rpn.LambdaContextLoad:
			g.emitf("context_stack = top.v.context;")
			g.emitf("supStackDrop();")
		case rpn.ScopeBegin:
			g.emitf("struct HeapVariable *context_%d = context_stack;", in.Arg)
			g.emitf("BindsIndex binds_%d = binds_index;", in.Arg)
		case rpn.ScopeEnd:
			g.emitf("context_stack = context_%d;", in.Arg)
			g.emitf("binds_index = binds_%d;", in.Arg)
		case rpn.ConditionStart:
			g.emitf("if (top.v.number) { supStackDrop();")
		case rpn.ConditionElse:
			g.emitf("} else { supStackDrop();")
		case rpn.ConditionEnd:
			g.emitf("}")
		case rpn.Bind:
			g.emitf("supBind();")
		case rpn.BindCaptured:
			g.emitf("supBindCaptured();")
		case rpn.GetByHops:
			g.emitf("supGet(%d);", in.Arg)
		case rpn.SetByHops:
			g.emitf("supSet(%d);", in.Arg)
		case rpn.GetCapturedByHops:
			g.emitf("supGetCaptured(%d);", in.Arg)
		case rpn.SetCapturedByHops:
			g.emitf("supSetCaptured(%d);", in.Arg)
		case rpn.PushNumber:
			g.emitf("supPushNumber(%d);", in.Num)
		case rpn.Call:
			g.emitf("supCall();")
		case rpn.Str:
			g.emitf("supPushString(%s);", stringLiteralAt(g.src, in.Arg))
		case rpn.Get:
			descriptor, ok := builtins[in.Name]
			if !ok {
				return fmt.Errorf("unknown primitive: %s", in.Name)
			}
			g.emitf("supPushLambda(&%s);", descriptor)
		default:
			return fmt.Errorf("cannot generate code for %s", in)
		}
	}
	return nil
}

// stringLiteralAt returns the raw source slice of the string literal at
// off, quotes included. Escape sequences pass through verbatim: the
// source escape alphabet is the C one.
func stringLiteralAt(src []byte, off uint32) string {
	return string(src[off:stringEnd(src, off)])
}
