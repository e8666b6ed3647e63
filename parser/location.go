package parser

import (
	"fmt"

	"github.com/dbywalec/pymake/lexer"
)

const tabWidth = 4

// Location is a position within a makefile. Locations never span lines;
// Advance only moves the column.
type Location struct {
	Path   string
	Line   int
	Column int
}

func LocationOf(t lexer.Token) Location {
	return Location{
		Path:   t.Pos.Filename,
		Line:   t.Pos.Line,
		Column: t.Pos.Column,
	}
}

// Advance returns a new location on the same line, offset by the given
// text. Tabs round the column up to the next tab stop.
func (l Location) Advance(text string) Location {
	col := l.Column
	for _, c := range text {
		if c == '\t' {
			col += tabWidth - col%tabWidth
		} else {
			col++
		}
	}
	if col == l.Column {
		return l
	}
	return Location{Path: l.Path, Line: l.Line, Column: col}
}

func (l Location) String() string {
	return fmt.Sprintf("%v:%v:%v", l.Path, l.Line, l.Column)
}
