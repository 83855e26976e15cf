package lexer

import "fmt"

// Position is a place in the source. Line and Column start at 1, Offset is
// the byte offset from the start of the input.
type Position struct {
	Line   int
	Column int
	Offset int
}

// String renders the position as "line:column"
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsValid reports whether the position was set; the zero Position is not
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Creates a new Position instance
func NewPosition(line, column, offset int) Position {
	return Position{
		Line:   line,
		Column: column,
		Offset: offset,
	}
}
