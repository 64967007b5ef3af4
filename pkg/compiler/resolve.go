package compiler

import "lolc/pkg/rpn"

// Resolve runs the capture-analysis and hop-resolution passes in place.
// Afterwards every load and store is either hop-based or still a name
// reference to a built-in, which the code generator checks.
//
// Every pass is a backward scan from the reference toward the start of
// the program. The depth counter goes down on scope_begin and up on
// scope_end, so instructions in an enclosing open scope sit at negative
// depth and instructions in a closed scope nested inside the reference's
// own scope sit at positive depth and are skipped. A closed scope that
// precedes one of the reference's enclosing scopes is walked at depth
// zero: its binds are counted as hops and can match. The first match
// found walking backward at non-positive depth wins; it is the innermost
// enclosing binding unless such a closed scope binds the same name.
func Resolve(prog []rpn.Instr) {
	promoteCapturedBinds(prog)
	reclassifyLoads(prog)
	reclassifyStores(prog)
	resolveLocalHops(prog)
	resolveCapturedHops(prog)
}

// promoteCapturedBinds rewrites bind to bind_captured for every binding
// that is referenced from inside a nested lambda. Crossing a
// lambda_context_load at non-positive depth on the way to the binding
// is what marks the reference as nested.
func promoteCapturedBinds(prog []rpn.Instr) {
	for i, in := range prog {
		if in.Op != rpn.Get && in.Op != rpn.Set {
			continue
		}
		depth := 0
		lambdaPassed := false
	scan:
		for j := i - 1; j >= 0; j-- {
			switch prog[j].Op {
			case rpn.ScopeBegin:
				depth--
			case rpn.ScopeEnd:
				depth++
			case rpn.LambdaContextLoad:
				if depth <= 0 {
					lambdaPassed = true
				}
			case rpn.Bind, rpn.BindCaptured:
				if prog[j].Name == in.Name && depth <= 0 {
					if prog[j].Op == rpn.Bind && depth < 0 && lambdaPassed {
						prog[j].Op = rpn.BindCaptured
					}
					break scan
				}
			}
		}
	}
}

// reclassifyLoads rewrites get to get_captured when the binding it
// resolves to was promoted. A get that matches no binding at all is a
// built-in reference and is left alone.
func reclassifyLoads(prog []rpn.Instr) {
	for i, in := range prog {
		if in.Op == rpn.Get {
			if findBinding(prog, i, in.Name) == rpn.BindCaptured {
				prog[i].Op = rpn.GetCaptured
			}
		}
	}
}

// reclassifyStores is reclassifyLoads for set.
func reclassifyStores(prog []rpn.Instr) {
	for i, in := range prog {
		if in.Op == rpn.Set {
			if findBinding(prog, i, in.Name) == rpn.BindCaptured {
				prog[i].Op = rpn.SetCaptured
			}
		}
	}
}

// findBinding returns the op of the innermost enclosing binding of name
// before index i, or Get when there is none.
func findBinding(prog []rpn.Instr, i int, name string) rpn.Op {
	depth := 0
	for j := i - 1; j >= 0; j-- {
		switch prog[j].Op {
		case rpn.ScopeBegin:
			depth--
		case rpn.ScopeEnd:
			depth++
		case rpn.Bind, rpn.BindCaptured:
			if prog[j].Name == name && depth <= 0 {
				return prog[j].Op
			}
		}
	}
	return rpn.Get
}

// resolveLocalHops rewrites name-based get/set into bind-array hop
// counts. Each plain bind at non-positive depth between the reference
// and its binding occupies one live bind-array slot and is one hop.
func resolveLocalHops(prog []rpn.Instr) {
	for i, in := range prog {
		if in.Op != rpn.Get && in.Op != rpn.Set {
			continue
		}
		depth := 0
		hops := uint32(0)
	scan:
		for j := i - 1; j >= 0; j-- {
			switch prog[j].Op {
			case rpn.ScopeBegin:
				depth--
			case rpn.ScopeEnd:
				depth++
			case rpn.Bind:
				if depth > 0 {
					continue
				}
				if prog[j].Name == in.Name {
					if in.Op == rpn.Get {
						prog[i] = rpn.Instr{Op: rpn.GetByHops, Arg: hops}
					} else {
						prog[i] = rpn.Instr{Op: rpn.SetByHops, Arg: hops}
					}
					break scan
				}
				hops++
			}
		}
	}
}

// resolveCapturedHops is resolveLocalHops over the closure chain: hops
// count intervening bind_captured instructions instead.
func resolveCapturedHops(prog []rpn.Instr) {
	for i, in := range prog {
		if in.Op != rpn.GetCaptured && in.Op != rpn.SetCaptured {
			continue
		}
		depth := 0
		hops := uint32(0)
	scan:
		for j := i - 1; j >= 0; j-- {
			switch prog[j].Op {
			case rpn.ScopeBegin:
				depth--
			case rpn.ScopeEnd:
				depth++
			case rpn.BindCaptured:
				if depth > 0 {
					continue
				}
				if prog[j].Name == in.Name {
					if in.Op == rpn.GetCaptured {
						prog[i] = rpn.Instr{Op: rpn.GetCapturedByHops, Arg: hops}
					} else {
						prog[i] = rpn.Instr{Op: rpn.SetCapturedByHops, Arg: hops}
					}
					break scan
				}
				hops++
			}
		}
	}
}
