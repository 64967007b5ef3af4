package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	L_PAREN TokenType = iota // (
	R_PAREN                  // )
	SYMBOL                   // identifier, number literal or built-in name
	STRING                   // string literal "..."
)

var tokenNames = [...]string{
	L_PAREN: "L_PAREN",
	R_PAREN: "R_PAREN",
	SYMBOL:  "SYMBOL",
	STRING:  "STRING",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Token is a single lexical unit. It carries no text of its own: Index
// points at the first character of the lexeme in the source buffer, and
// symbol extent is recovered by re-scanning the symbol character class.
type Token struct {
	Type  TokenType
	Index uint32 // byte offset of the first character of the lexeme
}

func (t Token) String() string {
	return fmt.Sprintf("%-8s @%d", t.Type, t.Index)
}
