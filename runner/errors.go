package runner

import (
	"fmt"

	"github.com/dbywalec/pymake/parser"
)

// DataError is a build-definition problem discovered while executing
// statements: mixed rule kinds, unmatched stems, empty variable names
// and the like. It is fatal to the current execution pass.
type DataError struct {
	Msg string
	Loc parser.Location
}

func (e *DataError) Error() string {
	return fmt.Sprintf("%v: %v", e.Loc, e.Msg)
}

func dataErrorf(loc parser.Location, f string, args ...interface{}) error {
	return &DataError{Msg: fmt.Sprintf(f, args...), Loc: loc}
}
