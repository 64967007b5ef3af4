package compiler

import (
	"errors"
	"fmt"
	"strings"
)

// UnexpectedCharError is the tokenizer's only failure mode: a byte that
// no NORMAL-state transition accepts.
type UnexpectedCharError struct {
	Offset uint32
	Char   byte
}

func (e *UnexpectedCharError) Error() string {
	return fmt.Sprintf("unexpected character %q at offset %d", string(e.Char), e.Offset)
}

// RenderError formats err for stderr. For tokenizer errors it resolves
// the offset to a line and column and attaches the source line; other
// errors pass through unchanged.
func RenderError(err error, src []byte) string {
	var ue *UnexpectedCharError
	if !errors.As(err, &ue) {
		return err.Error()
	}
	line, col, text := locate(src, ue.Offset)
	return fmt.Sprintf("unexpected character at line %d, column %d\n  char: %q\n  |> %s",
		line, col, string(ue.Char), text)
}

// locate resolves a byte offset to its 1-based line and column and the
// text of that line.
func locate(src []byte, off uint32) (line, col int, text string) {
	line, col = 1, 1
	start := 0
	for i := 0; i < len(src) && uint32(i) < off; i++ {
		if src[i] == '\n' {
			line++
			col = 1
			start = i + 1
		} else {
			col++
		}
	}
	end := start
	for end < len(src) && src[end] != '\n' {
		end++
	}
	return line, col, strings.TrimRight(string(src[start:end]), "\r")
}
