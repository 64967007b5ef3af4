package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"lolc/pkg/compiler"
	"lolc/pkg/vm"
)

const (
	historyFile = ".lol_history"
	prompt      = "lol> "
)

// lolrepl evaluates one expression per line on the RPN virtual machine.
// Ctrl+C cancels input, Ctrl+D exits.
func main() {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyPath := filepath.Join(os.TempDir(), historyFile)
	if f, err := os.Open(historyPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	for {
		input, err := line.Prompt(prompt)
		if err == liner.ErrPromptAborted {
			continue
		}
		if err != nil {
			fmt.Println()
			return
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		line.AppendHistory(input)
		evalLine(input)
	}
}

func evalLine(input string) {
	prog, buf, err := compiler.CompileToRPN(input)
	if err != nil {
		fmt.Fprintln(os.Stderr, compiler.RenderError(err, buf))
		return
	}
	machine := vm.New([]string{"lolrepl"}, os.Stdout)
	result, err := machine.Eval(prog, buf)
	if err != nil {
		fmt.Fprintln(os.Stderr, "runtime error:", err)
		return
	}
	fmt.Println(result)
}
