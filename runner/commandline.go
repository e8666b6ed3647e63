package runner

import (
	"strings"

	"github.com/dbywalec/pymake/parser"
)

// ParseCommandLineArgs splits raw invocation arguments into variable
// override statements and a residual goal list. `NAME:=value` and
// `NAME=value` arguments become an Override plus a command-line-source
// SetVariable; anything else passes through as a goal.
func ParseCommandLineArgs(args []string) (StatementList, []string) {
	stmts := StatementList{}
	rest := make([]string, 0)

	for i, a := range args {
		vname, val, tok := partitionAssignment(a)
		if tok == "" {
			rest = append(rest, a)
			continue
		}

		stmts.Append(&Override{S: a})

		vname = strings.TrimSpace(vname)
		stmts.Append(&SetVariable{
			NameExp: parser.FromString(vname),
			Token:   tok,
			Value:   val,
			ValueLoc: parser.Location{
				Path:   "<command-line>",
				Line:   i,
				Column: len(vname) + len(tok),
			},
			Source: SourceCommandLine,
		})
	}

	return stmts, rest
}

func partitionAssignment(a string) (string, string, string) {
	if name, val, ok := strings.Cut(a, ":="); ok {
		return name, val, ":="
	}
	if name, val, ok := strings.Cut(a, "="); ok {
		return name, val, "="
	}
	return a, "", ""
}
