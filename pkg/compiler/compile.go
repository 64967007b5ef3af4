package compiler

import (
	"fmt"

	"lolc/pkg/rpn"
)

// Compile runs the whole pipeline on a source text and returns the C
// translation unit.
func Compile(src string) (string, error) {
	tokens, buf, err := Tokenize(src)
	if err != nil {
		return "", fmt.Errorf("lex error: %w", err)
	}

	tree, root, err := Parse(tokens, buf)
	if err != nil {
		return "", fmt.Errorf("parse error: %w", err)
	}

	prog, err := Lower(tree, root)
	if err != nil {
		return "", fmt.Errorf("lowering error: %w", err)
	}

	Resolve(prog)

	unit, err := Generate(prog, buf)
	if err != nil {
		return "", fmt.Errorf("codegen error: %w", err)
	}
	return unit, nil
}

// CompileToRPN runs the front half of the pipeline and returns the
// resolved instruction list plus the source buffer it references, for
// callers that execute programs directly.
func CompileToRPN(src string) ([]rpn.Instr, []byte, error) {
	tokens, buf, err := Tokenize(src)
	if err != nil {
		return nil, buf, fmt.Errorf("lex error: %w", err)
	}
	tree, root, err := Parse(tokens, buf)
	if err != nil {
		return nil, buf, fmt.Errorf("parse error: %w", err)
	}
	prog, err := Lower(tree, root)
	if err != nil {
		return nil, buf, fmt.Errorf("lowering error: %w", err)
	}
	Resolve(prog)
	return prog, buf, nil
}
