package main

import (
	"fmt"
	"io"
	"os"

	"lolc/pkg/compiler"
	"lolc/pkg/rpn"
)

// lolc is the pipe-mode compiler: LOL source on stdin, the generated C
// translation unit on stdout, and a dump of every phase on stderr.
func main() {
	source, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read error:", err)
		os.Exit(1)
	}

	tokens, buf, err := compiler.Tokenize(string(source))
	if err != nil {
		fmt.Fprintln(os.Stderr, compiler.RenderError(err, buf))
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Tokens (%d)\n", len(tokens))
	for _, tok := range tokens {
		fmt.Fprintln(os.Stderr, " ", tok)
	}
	fmt.Fprintln(os.Stderr)

	tree, root, err := compiler.Parse(tokens, buf)
	if err != nil {
		fmt.Fprintln(os.Stderr, "parse error:", err)
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, "AST")
	fmt.Fprintln(os.Stderr, " ", tree.Pretty(root))
	fmt.Fprintln(os.Stderr)

	prog, err := compiler.Lower(tree, root)
	if err != nil {
		fmt.Fprintln(os.Stderr, "lowering error:", err)
		os.Exit(1)
	}
	compiler.Resolve(prog)
	fmt.Fprintln(os.Stderr, "RPN")
	fmt.Fprint(os.Stderr, rpn.Dump(prog))
	fmt.Fprintln(os.Stderr)

	unit, err := compiler.Generate(prog, buf)
	if err != nil {
		fmt.Fprintln(os.Stderr, "codegen error:", err)
		os.Exit(1)
	}
	fmt.Print(unit)
}
