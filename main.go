package main

import (
	"flag"
	"fmt"
	"os"

	"lolc/pkg/compiler"
	"lolc/pkg/vm"
)

func main() {
	inPath := flag.String("in", "", "input LOL source file path")
	outPath := flag.String("out", "", "output C file path (default: stdout)")
	runProgram := flag.Bool("run", false, "run the program on the RPN virtual machine instead of emitting C")
	headerPath := flag.String("emit-header", "", "write support.h to the given path and exit")
	flag.Parse()

	if *headerPath != "" {
		if err := os.WriteFile(*headerPath, []byte(compiler.SupportHeader), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write %q: %v\n", *headerPath, err)
			os.Exit(1)
		}
		return
	}

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "no input file (use -in)")
		os.Exit(2)
	}
	source, err := os.ReadFile(*inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read input file %q: %v\n", *inPath, err)
		os.Exit(1)
	}

	if *runProgram {
		prog, buf, err := compiler.CompileToRPN(string(source))
		if err != nil {
			fmt.Fprintln(os.Stderr, compiler.RenderError(err, buf))
			os.Exit(1)
		}
		// The program's argv: the source file stands in for the
		// program name, remaining CLI arguments pass through.
		args := append([]string{*inPath}, flag.Args()...)
		result, err := vm.Run(prog, buf, args, os.Stdout)
		if err != nil {
			fmt.Fprintln(os.Stderr, "runtime error:", err)
			os.Exit(1)
		}
		os.Exit(int(result.Num))
	}

	unit, err := compiler.Compile(string(source))
	if err != nil {
		fmt.Fprintln(os.Stderr, compiler.RenderError(err, source))
		os.Exit(1)
	}

	if *outPath == "" {
		fmt.Print(unit)
		return
	}
	if err := os.WriteFile(*outPath, []byte(unit), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write output file %q: %v\n", *outPath, err)
		os.Exit(1)
	}
}
