package compiler

import (
	"fmt"
	"strconv"

	"lolc/pkg/rpn"
)

// Lower translates the expression rooted at root into the flat
// reverse-Polish instruction list the resolution passes operate on.
func Lower(tree *Tree, root NodeID) ([]rpn.Instr, error) {
	lw := &lowerer{tree: tree}
	if err := lw.expr(root); err != nil {
		return nil, err
	}
	return lw.out, nil
}

type lowerer struct {
	tree *Tree
	out  []rpn.Instr
}

func (lw *lowerer) emit(in rpn.Instr) int {
	lw.out = append(lw.out, in)
	return len(lw.out) - 1
}

// scopeBegin emits a scope_begin whose id is its own instruction index,
// which is unique by construction and names the matching scope_end.
func (lw *lowerer) scopeBegin() int {
	idx := lw.emit(rpn.Instr{Op: rpn.ScopeBegin})
	lw.out[idx].Arg = uint32(idx)
	return idx
}

func (lw *lowerer) scopeEnd(id int) {
	lw.emit(rpn.Instr{Op: rpn.ScopeEnd, Arg: uint32(id)})
}

// scoped lowers one expression bracketed by its own scope pair.
func (lw *lowerer) scoped(id NodeID) error {
	sid := lw.scopeBegin()
	if err := lw.expr(id); err != nil {
		return err
	}
	lw.scopeEnd(sid)
	return nil
}

func (lw *lowerer) expr(id NodeID) error {
	if id == NilNode {
		return fmt.Errorf("empty call detected")
	}
	node := lw.tree.Nodes[id]
	switch node.Kind {
	case NodeSymbol:
		text := lw.tree.SymbolText(id)
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			lw.emit(rpn.Instr{Op: rpn.PushNumber, Num: n})
		} else {
			lw.emit(rpn.Instr{Op: rpn.Get, Name: text})
		}
		return nil
	case NodeString:
		lw.emit(rpn.Instr{Op: rpn.Str, Arg: node.Off})
		return nil
	}

	// lambda, if and let are forms only at the head of a call; any other
	// head falls through to the general call rule.
	head := node.Elem
	if head != NilNode && lw.tree.Nodes[head].Kind == NodeSymbol {
		switch lw.tree.SymbolText(head) {
		case "lambda":
			return lw.lambda(id)
		case "if":
			return lw.conditional(id)
		case "let":
			return lw.let(id)
		}
	}
	return lw.call(id)
}

// elems collects the Elem of every cell in the list starting at id.
// id must be a list cell or the sentinel.
func (lw *lowerer) elems(id NodeID) []NodeID {
	var out []NodeID
	for cell := id; cell != NilNode; cell = lw.tree.Nodes[cell].Next {
		out = append(out, lw.tree.Nodes[cell].Elem)
	}
	return out
}

func (lw *lowerer) assertSymbol(id NodeID, what string) (string, error) {
	if id == NilNode || lw.tree.Nodes[id].Kind != NodeSymbol {
		return "", fmt.Errorf("%s must be a symbol", what)
	}
	return lw.tree.SymbolText(id), nil
}

func (lw *lowerer) assertList(id NodeID, what string) error {
	if id != NilNode && lw.tree.Nodes[id].Kind != NodeList {
		return fmt.Errorf("%s must be a list", what)
	}
	return nil
}

// lambda lowers (lambda (p1 .. pn) body).
func (lw *lowerer) lambda(id NodeID) error {
	elems := lw.elems(id)
	if len(elems) != 3 {
		return fmt.Errorf("lambda needs a parameter list and a body")
	}
	if err := lw.assertList(elems[1], "lambda parameter list"); err != nil {
		return err
	}
	var names []string
	for _, pid := range lw.elems(elems[1]) {
		name, err := lw.assertSymbol(pid, "lambda parameter")
		if err != nil {
			return err
		}
		names = append(names, name)
	}
	lw.emit(rpn.Instr{Op: rpn.Lambda, Arg: uint32(len(names))})
	sid := lw.scopeBegin()
	lw.emit(rpn.Instr{Op: rpn.LambdaContextLoad})
	for _, name := range names {
		lw.emit(rpn.Instr{Op: rpn.Bind, Name: name})
	}
	if err := lw.expr(elems[2]); err != nil {
		return err
	}
	lw.scopeEnd(sid)
	lw.emit(rpn.Instr{Op: rpn.LambdaRet})
	return nil
}

// conditional lowers (if c t e). The branch targets are back-patched:
// condition_start jumps to the condition_else index when the condition
// is zero, condition_else jumps to the condition_end index.
func (lw *lowerer) conditional(id NodeID) error {
	elems := lw.elems(id)
	if len(elems) != 4 {
		return fmt.Errorf("if needs a condition and two branches")
	}
	if err := lw.scoped(elems[1]); err != nil {
		return err
	}
	condStart := lw.emit(rpn.Instr{Op: rpn.ConditionStart})
	if err := lw.scoped(elems[2]); err != nil {
		return err
	}
	condElse := lw.emit(rpn.Instr{Op: rpn.ConditionElse})
	if err := lw.scoped(elems[3]); err != nil {
		return err
	}
	condEnd := lw.emit(rpn.Instr{Op: rpn.ConditionEnd})
	lw.out[condStart].Arg = uint32(condElse)
	lw.out[condElse].Arg = uint32(condEnd)
	return nil
}

// let lowers (let (n1 e1 .. nk ek) body). Each name is bound to zero
// before its initializer runs, so an initializer lambda can refer to
// its own binding.
func (lw *lowerer) let(id NodeID) error {
	elems := lw.elems(id)
	if len(elems) != 3 {
		return fmt.Errorf("let needs a binding list and a body")
	}
	if err := lw.assertList(elems[1], "let binding list"); err != nil {
		return err
	}
	pairs := lw.elems(elems[1])
	if len(pairs)%2 != 0 {
		return fmt.Errorf("let bindings must be name and value pairs")
	}
	sid := lw.scopeBegin()
	for i := 0; i < len(pairs); i += 2 {
		name, err := lw.assertSymbol(pairs[i], "let binding name")
		if err != nil {
			return err
		}
		lw.emit(rpn.Instr{Op: rpn.PushNumber, Num: 0})
		lw.emit(rpn.Instr{Op: rpn.Bind, Name: name})
		if err := lw.expr(pairs[i+1]); err != nil {
			return err
		}
		lw.emit(rpn.Instr{Op: rpn.Set, Name: name})
	}
	if err := lw.expr(elems[2]); err != nil {
		return err
	}
	lw.scopeEnd(sid)
	return nil
}

// call lowers (f a1 .. am): arguments left to right, then the callee,
// then the call itself.
func (lw *lowerer) call(id NodeID) error {
	elems := lw.elems(id)
	for _, arg := range elems[1:] {
		if err := lw.expr(arg); err != nil {
			return err
		}
	}
	if err := lw.expr(elems[0]); err != nil {
		return err
	}
	lw.emit(rpn.Instr{Op: rpn.Call, Arg: uint32(len(elems) - 1)})
	return nil
}
