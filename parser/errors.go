package parser

import "fmt"

// SyntaxError is a build-definition syntax problem tied to a location,
// raised eagerly while the statement tree is being built.
type SyntaxError struct {
	Msg string
	Loc Location
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v: %v", e.Loc, e.Msg)
}

func SyntaxErrorf(loc Location, f string, args ...interface{}) error {
	return &SyntaxError{Msg: fmt.Sprintf(f, args...), Loc: loc}
}
