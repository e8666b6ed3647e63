package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocationAdvance(t *testing.T) {
	l := Location{Path: "Makefile", Line: 3, Column: 0}

	assert.Equal(t, Location{Path: "Makefile", Line: 3, Column: 5}, l.Advance("hello"))
	assert.Equal(t, l, l.Advance(""))
}

func TestLocationAdvanceTabs(t *testing.T) {
	l := Location{Path: "Makefile", Line: 1, Column: 0}

	assert.Equal(t, 4, l.Advance("\t").Column)
	assert.Equal(t, 4, l.Advance("abc\t").Column)
	assert.Equal(t, 8, l.Advance("abcd\t").Column)
	assert.Equal(t, 8, l.Advance("\t\t").Column)
	assert.Equal(t, 6, l.Advance("\tab").Column)
}

func TestLocationString(t *testing.T) {
	l := Location{Path: "dir/Makefile", Line: 12, Column: 7}
	assert.Equal(t, "dir/Makefile:12:7", l.String())
}
