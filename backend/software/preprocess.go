package software

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// unit is the active text of one preprocessed shader together with the
// object-like macros defined while reading it.
type unit struct {
	defines map[string]string
	text    string
}

type condFrame struct {
	parent  bool // enclosing block active
	taken   bool // a branch of this block was already selected
	active  bool
	sawElse bool
}

// preprocess evaluates the conditional directives of a GLSL source. Only
// the subset used by the effect library is understood: #define, #undef,
// #if, #ifdef, #ifndef, #elif, #else, #endif and #error. Version, extension
// and pragma lines are skipped.
func preprocess(src string) (*unit, error) {
	u := &unit{defines: make(map[string]string)}
	var out strings.Builder
	var stack []condFrame

	active := func() bool {
		return len(stack) == 0 || stack[len(stack)-1].active
	}

	for n, line := range strings.Split(stripComments(src), "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			if active() {
				out.WriteString(line)
				out.WriteByte('\n')
			}
			continue
		}

		directive, rest := splitWord(strings.TrimSpace(trimmed[1:]))
		lineErr := func(format string, args ...any) error {
			return fmt.Errorf("line %d: #%s: %s", n+1, directive, fmt.Sprintf(format, args...))
		}

		switch directive {
		case "define":
			if !active() {
				continue
			}
			name, value := splitWord(rest)
			if name == "" {
				return nil, lineErr("missing macro name")
			}
			if i := strings.IndexByte(name, '('); i >= 0 {
				name = name[:i]
			}
			u.defines[name] = value
		case "undef":
			if active() {
				name, _ := splitWord(rest)
				delete(u.defines, name)
			}
		case "ifdef", "ifndef":
			name, _ := splitWord(rest)
			if name == "" {
				return nil, lineErr("missing macro name")
			}
			_, defined := u.defines[name]
			cond := defined == (directive == "ifdef")
			parent := active()
			stack = append(stack, condFrame{parent: parent, taken: cond, active: parent && cond})
		case "if":
			parent := active()
			cond := false
			if parent {
				v, err := evalCondition(rest, u.defines)
				if err != nil {
					return nil, lineErr("%v", err)
				}
				cond = v
			}
			stack = append(stack, condFrame{parent: parent, taken: cond, active: parent && cond})
		case "elif":
			if len(stack) == 0 {
				return nil, lineErr("without #if")
			}
			f := &stack[len(stack)-1]
			if f.sawElse {
				return nil, lineErr("after #else")
			}
			f.active = false
			if f.parent && !f.taken {
				v, err := evalCondition(rest, u.defines)
				if err != nil {
					return nil, lineErr("%v", err)
				}
				f.active, f.taken = v, v
			}
		case "else":
			if len(stack) == 0 {
				return nil, lineErr("without #if")
			}
			f := &stack[len(stack)-1]
			if f.sawElse {
				return nil, lineErr("duplicate #else")
			}
			f.sawElse = true
			f.active = f.parent && !f.taken
			f.taken = true
		case "endif":
			if len(stack) == 0 {
				return nil, lineErr("without #if")
			}
			stack = stack[:len(stack)-1]
		case "error":
			if active() {
				return nil, fmt.Errorf("line %d: #error %s", n+1, strings.TrimSpace(rest))
			}
		case "version", "extension", "pragma", "line", "":
		default:
			if active() {
				return nil, lineErr("unsupported directive")
			}
		}
	}

	if len(stack) != 0 {
		return nil, fmt.Errorf("unterminated #if (%d open)", len(stack))
	}
	u.text = out.String()
	return u, nil
}

// stripComments removes block and line comments, keeping line breaks so
// that line numbers stay meaningful.
func stripComments(src string) string {
	var b strings.Builder
	b.Grow(len(src))
	for i := 0; i < len(src); i++ {
		switch {
		case strings.HasPrefix(src[i:], "/*"):
			end := strings.Index(src[i+2:], "*/")
			body := src[i:]
			if end >= 0 {
				body = src[i : i+2+end+2]
			}
			b.WriteString(strings.Repeat("\n", strings.Count(body, "\n")))
			i += len(body) - 1
		case strings.HasPrefix(src[i:], "//"):
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				return b.String()
			}
			i += end - 1
		default:
			b.WriteByte(src[i])
		}
	}
	return b.String()
}

func splitWord(s string) (word, rest string) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

// evalCondition evaluates a #if expression built from defined(), !, &&, ||,
// parentheses, integer literals and macro names.
func evalCondition(expr string, defines map[string]string) (bool, error) {
	p := &condParser{toks: tokenize(expr), defines: defines}
	v, err := p.or()
	if err != nil {
		return false, err
	}
	if p.pos != len(p.toks) {
		return false, fmt.Errorf("unexpected %q", p.toks[p.pos])
	}
	return v != 0, nil
}

func tokenize(expr string) []string {
	var toks []string
	for i := 0; i < len(expr); {
		c := expr[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case strings.HasPrefix(expr[i:], "&&"), strings.HasPrefix(expr[i:], "||"):
			toks = append(toks, expr[i:i+2])
			i += 2
		case c == '!' || c == '(' || c == ')':
			toks = append(toks, string(c))
			i++
		default:
			j := i
			for j < len(expr) && (expr[j] == '_' || unicode.IsLetter(rune(expr[j])) || unicode.IsDigit(rune(expr[j]))) {
				j++
			}
			if j == i {
				j = i + 1
			}
			toks = append(toks, expr[i:j])
			i = j
		}
	}
	return toks
}

type condParser struct {
	toks    []string
	pos     int
	defines map[string]string
}

func (p *condParser) peek() string {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return ""
}

func (p *condParser) next() string {
	t := p.peek()
	p.pos++
	return t
}

func (p *condParser) or() (int64, error) {
	v, err := p.and()
	for err == nil && p.peek() == "||" {
		p.next()
		var r int64
		if r, err = p.and(); err == nil && (v != 0 || r != 0) {
			v = 1
		} else if err == nil {
			v = 0
		}
	}
	return v, err
}

func (p *condParser) and() (int64, error) {
	v, err := p.unary()
	for err == nil && p.peek() == "&&" {
		p.next()
		var r int64
		if r, err = p.unary(); err == nil && v != 0 && r != 0 {
			v = 1
		} else if err == nil {
			v = 0
		}
	}
	return v, err
}

func (p *condParser) unary() (int64, error) {
	if p.peek() == "!" {
		p.next()
		v, err := p.unary()
		if v == 0 {
			return 1, err
		}
		return 0, err
	}
	return p.primary()
}

func (p *condParser) primary() (int64, error) {
	tok := p.next()
	switch {
	case tok == "":
		return 0, fmt.Errorf("unexpected end of expression")
	case tok == "(":
		v, err := p.or()
		if err != nil {
			return 0, err
		}
		if p.next() != ")" {
			return 0, fmt.Errorf("missing )")
		}
		return v, nil
	case tok == "defined":
		paren := p.peek() == "("
		if paren {
			p.next()
		}
		name := p.next()
		if name == "" || name == ")" {
			return 0, fmt.Errorf("defined without a macro name")
		}
		if paren && p.next() != ")" {
			return 0, fmt.Errorf("missing ) after defined")
		}
		if _, ok := p.defines[name]; ok {
			return 1, nil
		}
		return 0, nil
	case unicode.IsDigit(rune(tok[0])):
		return strconv.ParseInt(tok, 0, 64)
	default:
		// Undefined identifiers evaluate to zero, as in C.
		if v, err := strconv.ParseInt(strings.TrimSpace(p.defines[tok]), 0, 64); err == nil {
			return v, nil
		}
		return 0, nil
	}
}
