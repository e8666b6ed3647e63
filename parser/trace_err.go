package parser

import (
	"errors"
	"strings"
)

type traceErr struct {
	trace []string
	err   error
}

func (e *traceErr) Error() string {
	prefix := strings.Join(e.trace, " > ")

	return "[" + prefix + "]: " + e.err.Error()
}

func (e *traceErr) Unwrap() error {
	return e.err
}

// Wrap prefixes err with the production name, accumulating a parse
// trace as the error bubbles up.
func Wrap(name string, err error) error {
	var we *traceErr
	if errors.As(err, &we) {
		we.trace = append([]string{name}, we.trace...)
		return we
	}

	return &traceErr{
		trace: []string{name},
		err:   err,
	}
}
