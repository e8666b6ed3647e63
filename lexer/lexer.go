package lexer

import (
	"io"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/alecthomas/participle/v2/lexer/stateful"
)

var _def *stateful.Definition

func init() {
	ExpStart := stateful.Rule{Name: `ExpStart`, Pattern: `\$\(`, Action: stateful.Push("Exp")}
	ExpVar := stateful.Rule{Name: `ExpVar`, Pattern: `\$[\d]+|\$[\w-]+`, Action: nil}
	Char := stateful.Rule{Name: `Char`, Pattern: `.|\n`, Action: nil}
	AssignOp := stateful.Rule{Name: `AssignOp`, Pattern: `::=|:=|\?=|\+=|=`, Action: stateful.Push("Expr")}
	KeywordPattern := `(?:` + strings.Join([]string{
		"endif",
		"ifeq",
		"ifneq",
		"ifdef",
		"ifndef",
		"sinclude",
		"include",
		"vpath",
		"endef",
	}, "|") + `)\b`

	_def = stateful.Must(stateful.Rules{
		"Base": {
			{Name: `Continuation`, Pattern: `\\\n\s*`, Action: nil},
			{Name: `Comment`, Pattern: `#[^\n]*\n`, Action: nil},
			{Name: `Escaped`, Pattern: `\\.`, Action: nil},
		},
		"Exp": {
			stateful.Include("Base"),
			{Name: `ExpEnd`, Pattern: `\)`, Action: stateful.Pop()},
			{Name: `ExpStr`, Pattern: `'[^']*'|"[^"]*"`, Action: nil},
			ExpVar,
			ExpStart,
			Char,
		},
		"TargetDeps": {
			stateful.Include("Base"),
			{Name: `TargetDepsEnd`, Pattern: `\n`, Action: stateful.Push("Root")},
			stateful.Include("Expr"),
		},
		"Expr": {
			stateful.Include("Base"),
			{Name: `Nl`, Pattern: `\n`, Action: stateful.Pop()},
			ExpVar,
			ExpStart,
			Char,
		},
		"Define": {
			stateful.Include("Base"),
			{Name: `Endef`, Pattern: `endef`, Action: stateful.Pop()},
			ExpVar,
			ExpStart,
			Char,
		},
		"Keyword": {
			stateful.Include("Base"),
			{Name: `Nl`, Pattern: `\n`, Action: stateful.Push("Root")},
			stateful.Include("Expr"),
		},
		"Root": {
			stateful.Include("Base"),
			AssignOp,
			{Name: `Colon`, Pattern: `::|:`, Action: stateful.Push("TargetDeps")},
			{Name: `Nl`, Pattern: `\n`, Action: nil},
			{Name: `Tab`, Pattern: `\t`, Action: stateful.Push("Expr")},
			ExpVar,
			ExpStart,
			{Name: `Define`, Pattern: `define\b`, Action: stateful.Push("Define")},
			{Name: `Else`, Pattern: `else\b`, Action: nil},
			{Name: `Override`, Pattern: `override\b`, Action: nil},
			{Name: `Export`, Pattern: `export\b`, Action: nil},
			{Name: `Keyword`, Pattern: KeywordPattern, Action: stateful.Push("Keyword")},
			AssignOp,
			Char,
		},
	})
}

func Tokenize(name string, r io.Reader) ([]Token, error) {
	lex, err := Def().Lex(name, r)
	if err != nil {
		return nil, err
	}

	toks, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, err
	}

	mytoks := make([]Token, len(toks))
	for i, t := range toks {
		mytoks[i] = Token(t)
	}

	return mytoks, nil
}

func Def() *stateful.Definition {
	return _def
}

func Symbols() map[string]rune {
	return Def().Symbols()
}

func Symbol(name string) rune {
	t := Symbols()[name]
	if t == 0 {
		panic("unknown symbol: " + name)
	}
	return t
}

var typeToName map[rune]string

func init() {
	typeToName = map[rune]string{}
	for s, k := range Symbols() {
		typeToName[k] = s
	}
}

func SymbolName(t rune) string {
	return typeToName[t]
}
