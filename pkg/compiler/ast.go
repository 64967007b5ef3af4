package compiler

import "strings"

// NodeID indexes a node in the AST arena. NilNode is the end-of-list
// sentinel; an empty list is the sentinel itself, never a cell.
type NodeID uint32

const NilNode NodeID = 0xFFFFFFFF

// NodeKind discriminates the arena's node variants.
type NodeKind uint8

const (
	NodeList   NodeKind = iota // a cons cell: Elem and Next
	NodeSymbol                 // Off points at the first symbol character
	NodeString                 // Off points at the opening quote
)

// Node is one arena slot. Lists chain cells through Next; Elem of each
// cell is the child expression. Symbols and strings store only a source
// offset; their extent is recovered from the source buffer.
type Node struct {
	Kind NodeKind
	Elem NodeID
	Next NodeID
	Off  uint32
}

// Tree is the AST arena together with the source buffer its leaves
// index. The arena is append-only; IDs stay valid as it grows.
type Tree struct {
	Nodes []Node
	Src   []byte
}

func (t *Tree) append(n Node) NodeID {
	t.Nodes = append(t.Nodes, n)
	return NodeID(len(t.Nodes) - 1)
}

// SymbolText returns the text of a symbol node.
func (t *Tree) SymbolText(id NodeID) string {
	return symbolAt(t.Src, t.Nodes[id].Off)
}

// StringText returns a string node's raw source slice, quotes included.
func (t *Tree) StringText(id NodeID) string {
	off := t.Nodes[id].Off
	return string(t.Src[off:stringEnd(t.Src, off)])
}

// Pretty prints the expression rooted at id back as source text.
// Re-tokenizing the result yields the expression's original token
// stream, modulo whitespace.
func (t *Tree) Pretty(id NodeID) string {
	var sb strings.Builder
	t.pretty(&sb, id)
	return sb.String()
}

func (t *Tree) pretty(sb *strings.Builder, id NodeID) {
	if id == NilNode {
		sb.WriteString("()")
		return
	}
	switch t.Nodes[id].Kind {
	case NodeSymbol:
		sb.WriteString(t.SymbolText(id))
	case NodeString:
		sb.WriteString(t.StringText(id))
	case NodeList:
		sb.WriteByte('(')
		for cell := id; cell != NilNode; cell = t.Nodes[cell].Next {
			if cell != id {
				sb.WriteByte(' ')
			}
			t.pretty(sb, t.Nodes[cell].Elem)
		}
		sb.WriteByte(')')
	}
}
