package runner

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/dbywalec/pymake/parser"
)

type ExpFunc func(m *Makefile, scope *Variables, root string, args []parser.Node) (string, error)

var Exps map[string]ExpFunc

func init() {
	Exps = map[string]ExpFunc{
		"shell":      shell,
		"call":       call,
		"if":         _if,
		"words":      words,
		"firstword":  firstword,
		"lastword":   lastword,
		"strip":      strip,
		"subst":      subst,
		"eval":       eval,
		"dir":        dir,
		"notdir":     notdir,
		"basename":   basename,
		"realpath":   realpath,
		"wildcard":   wildcard,
		"foreach":    foreach,
		"filter":     filter,
		"filter-out": filter,
		"error":      control,
		"warning":    control,
		"info":       control,
		"patsubst":   patsubst,
		"addprefix":  addfix,
		"addsuffix":  addfix,
		"value":      value,
	}
}

// expMinArgs guards the argument indexing each builtin does. shell and
// the message functions take their whole tail as one string and accept
// any count.
var expMinArgs = map[string]int{
	"call":       1,
	"if":         2,
	"words":      1,
	"firstword":  1,
	"lastword":   1,
	"strip":      1,
	"subst":      3,
	"eval":       1,
	"dir":        1,
	"notdir":     1,
	"basename":   1,
	"realpath":   1,
	"wildcard":   1,
	"foreach":    3,
	"filter":     2,
	"filter-out": 2,
	"patsubst":   3,
	"addprefix":  2,
	"addsuffix":  2,
	"value":      1,
}

func value(m *Makefile, scope *Variables, root string, args []parser.Node) (string, error) {
	name, err := m.Resolve(args[0], scope)
	if err != nil {
		return "", err
	}

	_, _, v, ok := scope.Get(name)
	if !ok {
		return "", nil
	}

	return v, nil
}

func addfix(m *Makefile, scope *Variables, root string, args []parser.Node) (string, error) {
	fix, err := m.Resolve(args[0], scope)
	if err != nil {
		return "", err
	}

	namess, err := m.Resolve(args[1], scope)
	if err != nil {
		return "", err
	}

	names := Words(namess)

	for i, n := range names {
		if root == "addprefix" {
			names[i] = fix + n
		} else {
			names[i] = n + fix
		}
	}

	return strings.Join(names, " "), nil
}

func basename(m *Makefile, scope *Variables, root string, args []parser.Node) (string, error) {
	text, err := m.Resolve(args[0], scope)
	if err != nil {
		return "", err
	}

	ws := Words(text)
	for i, w := range ws {
		ws[i] = strings.TrimSuffix(w, filepath.Ext(w))
	}

	return strings.Join(ws, " "), nil
}

func words(m *Makefile, scope *Variables, root string, args []parser.Node) (string, error) {
	text, err := m.Resolve(args[0], scope)
	if err != nil {
		return "", err
	}

	return strconv.Itoa(len(Words(text))), nil
}

func shell(m *Makefile, scope *Variables, root string, args []parser.Node) (string, error) {
	shcmd, err := m.resolveAllStr(args, scope, ",")
	if err != nil {
		return "", err
	}

	cmd := exec.Command("sh", "-c", shcmd)
	cmd.Dir = m.Workdir
	data, err := cmd.CombinedOutput()
	out := string(data)
	if err != nil {
		return out, errors.Wrapf(err, "shell error with output:\n%v", out)
	}

	return strings.TrimSuffix(out, "\n"), nil
}

func call(m *Makefile, scope *Variables, root string, args []parser.Node) (string, error) {
	parts, err := m.resolveAll(args, scope)
	if err != nil {
		return "", err
	}

	varName := parts[0]
	if _, _, _, ok := scope.Get(varName); !ok {
		return "", nil
	}

	// $(0) is the called name, $(1)... the arguments
	ns := NewVariables(scope)
	for i, p := range parts {
		ns.Set(strconv.Itoa(i), FlavorSimple, SourceMakefile, p)
	}

	return m.expandVariable(varName, ns)
}

func _if(m *Makefile, scope *Variables, root string, args []parser.Node) (string, error) {
	cond, err := m.Resolve(args[0], scope)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(cond) != "" {
		return m.Resolve(args[1], scope)
	}

	if len(args) == 3 {
		return m.Resolve(args[2], scope)
	}

	return "", nil
}

func firstword(m *Makefile, scope *Variables, root string, args []parser.Node) (string, error) {
	v, err := m.Resolve(args[0], scope)
	if err != nil {
		return "", err
	}

	ws := Words(v)
	if len(ws) == 0 {
		return "", nil
	}

	return ws[0], nil
}

func lastword(m *Makefile, scope *Variables, root string, args []parser.Node) (string, error) {
	v, err := m.Resolve(args[0], scope)
	if err != nil {
		return "", err
	}

	ws := Words(v)
	if len(ws) == 0 {
		return "", nil
	}

	return ws[len(ws)-1], nil
}

func strip(m *Makefile, scope *Variables, root string, args []parser.Node) (string, error) {
	v, err := m.Resolve(args[0], scope)
	if err != nil {
		return "", err
	}

	return strings.Join(Words(v), " "), nil
}

func subst(m *Makefile, scope *Variables, root string, args []parser.Node) (string, error) {
	values, err := m.resolveAll(args, scope)
	if err != nil {
		return "", err
	}

	from := values[0]
	to := values[1]
	text := values[2]

	return strings.ReplaceAll(text, from, to), nil
}

func control(m *Makefile, scope *Variables, root string, args []parser.Node) (string, error) {
	text, err := m.resolveAllStr(args, scope, ",")
	if err != nil {
		return "", err
	}

	switch root {
	case "error":
		return "", errors.Errorf("%v", text)
	case "warning":
		log.Warnf("%v", text)
	default:
		fmt.Println(text)
	}

	return "", nil
}

// eval re-enters the statement engine: its argument is parsed, lowered
// and executed against the same model.
func eval(m *Makefile, scope *Variables, root string, args []parser.Node) (string, error) {
	v, err := m.Resolve(args[0], scope)
	if err != nil {
		return "", err
	}

	f, err := parser.Parse(strings.NewReader(v))
	if err != nil {
		return "", err
	}

	stmts, err := Compile(f)
	if err != nil {
		return "", err
	}

	return "", stmts.Execute(m, nil)
}

func dir(m *Makefile, scope *Variables, root string, args []parser.Node) (string, error) {
	s, err := m.Resolve(args[0], scope)
	if err != nil {
		return "", err
	}

	paths := Words(s)
	for i, p := range paths {
		li := strings.LastIndex(p, "/")
		if li < 0 {
			paths[i] = "./"
			continue
		}
		paths[i] = p[:li+1]
	}

	return strings.Join(paths, " "), nil
}

func notdir(m *Makefile, scope *Variables, root string, args []parser.Node) (string, error) {
	s, err := m.Resolve(args[0], scope)
	if err != nil {
		return "", err
	}

	paths := Words(s)
	for i, p := range paths {
		if !strings.Contains(p, "/") {
			continue
		}
		li := strings.LastIndex(p, "/")
		paths[i] = p[li+1:]
	}

	return strings.Join(paths, " "), nil
}

func realpath(m *Makefile, scope *Variables, root string, args []parser.Node) (string, error) {
	s, err := m.Resolve(args[0], scope)
	if err != nil {
		return "", err
	}

	paths := Words(s)
	for i, p := range paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(m.Workdir, p)
		}
		p, err = filepath.Abs(p)
		if err != nil {
			return "", err
		}
		paths[i] = filepath.Clean(p)
	}

	return strings.Join(paths, " "), nil
}

func filter(m *Makefile, scope *Variables, root string, args []parser.Node) (string, error) {
	expected := root == "filter"

	patterns, err := m.Resolve(args[0], scope)
	if err != nil {
		return "", err
	}
	text, err := m.Resolve(args[1], scope)
	if err != nil {
		return "", err
	}

	out := make([]string, 0)
	for _, w := range Words(text) {
		match := false
		for _, pattern := range Words(patterns) {
			r, err := toRegex(pattern)
			if err != nil {
				return "", err
			}

			if r.MatchString(w) {
				match = true
				break
			}
		}

		if match == expected {
			out = append(out, w)
		}
	}

	return strings.Join(out, " "), nil
}

func toRegex(pattern string) (*regexp.Regexp, error) {
	pattern = `^` + strings.Replace(regexp.QuoteMeta(pattern), "%", `(.*)`, 1) + `$`

	return regexp.Compile(pattern)
}

func wildcard(m *Makefile, scope *Variables, root string, args []parser.Node) (string, error) {
	pattern, err := m.Resolve(args[0], scope)
	if err != nil {
		return "", err
	}

	return strings.Join(m.glob(pattern), " "), nil
}

func foreach(m *Makefile, scope *Variables, root string, args []parser.Node) (string, error) {
	targetVar, err := m.Resolve(args[0], scope)
	if err != nil {
		return "", err
	}

	list, err := m.Resolve(args[1], scope)
	if err != nil {
		return "", err
	}

	out := make([]string, 0)
	for _, w := range Words(list) {
		ns := NewVariables(scope)
		ns.Set(targetVar, FlavorSimple, SourceMakefile, w)

		res, err := m.Resolve(args[2], ns)
		if err != nil {
			return "", err
		}
		out = append(out, res)
	}

	return strings.Join(out, " "), nil
}

func patsubst(m *Makefile, scope *Variables, root string, args []parser.Node) (string, error) {
	pattern, err := m.Resolve(args[0], scope)
	if err != nil {
		return "", err
	}

	repl, err := m.Resolve(args[1], scope)
	if err != nil {
		return "", err
	}

	text, err := m.Resolve(args[2], scope)
	if err != nil {
		return "", err
	}

	if !strings.Contains(pattern, "%") {
		pattern = "%" + pattern
		repl = "%" + repl
	}

	reg, err := toRegex(pattern)
	if err != nil {
		return "", err
	}

	ws := Words(text)
	for i, w := range ws {
		if !reg.MatchString(w) {
			continue
		}

		if !strings.Contains(repl, "%") {
			ws[i] = repl
			continue
		}

		groups := reg.FindStringSubmatch(w)
		ws[i] = strings.Replace(repl, "%", groups[1], 1)
	}

	return strings.Join(ws, " "), nil
}
