package ir

import (
	"fmt"
	"strings"
)

// Schema is a parsed operator signature such as
// "aten::relu(Tensor self) -> Tensor".
type Schema struct {
	Name    Symbol
	Args    []string
	Returns string
}

// String returns the canonical signature text. Two signatures denote the
// same operator overload iff their canonical texts are equal.
func (s Schema) String() string {
	return fmt.Sprintf("%s(%s) -> %s", s.Name, strings.Join(s.Args, ", "), s.Returns)
}

// ParseSchema parses a signature. Whitespace is insignificant except as a
// token separator, so line-wrapped signatures parse to the same Schema.
func ParseSchema(sig string) (Schema, error) {
	text := strings.Join(strings.Fields(sig), " ")
	open := strings.IndexByte(text, '(')
	if open < 0 {
		return Schema{}, fmt.Errorf("invalid schema %q: missing '('", sig)
	}
	name := Symbol(strings.TrimSpace(text[:open]))
	if !name.Valid() {
		return Schema{}, fmt.Errorf("invalid schema %q: operator name %q is not qualified", sig, name)
	}

	depth := 0
	closeIdx := -1
	var args []string
	start := open + 1
scan:
	for i := open; i < len(text); i++ {
		switch text[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
			if depth == 0 {
				closeIdx = i
				break scan
			}
		case ',':
			if depth == 1 {
				args = append(args, strings.TrimSpace(text[start:i]))
				start = i + 1
			}
		}
	}
	if closeIdx < 0 {
		return Schema{}, fmt.Errorf("invalid schema %q: unbalanced argument list", sig)
	}
	if last := strings.TrimSpace(text[start:closeIdx]); last != "" {
		args = append(args, last)
	} else if len(args) > 0 {
		return Schema{}, fmt.Errorf("invalid schema %q: empty argument", sig)
	}
	for _, a := range args {
		if a == "" {
			return Schema{}, fmt.Errorf("invalid schema %q: empty argument", sig)
		}
	}

	rest := strings.TrimSpace(text[closeIdx+1:])
	ret, ok := strings.CutPrefix(rest, "->")
	if !ok {
		return Schema{}, fmt.Errorf("invalid schema %q: missing '->'", sig)
	}
	ret = strings.TrimSpace(ret)
	if ret == "" {
		return Schema{}, fmt.Errorf("invalid schema %q: missing return type", sig)
	}
	return Schema{Name: name, Args: args, Returns: ret}, nil
}
