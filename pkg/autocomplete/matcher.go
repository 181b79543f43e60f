package autocomplete

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrInvalidExpression = errors.New("invalid type expression")
	ErrDuplicateType     = errors.New("duplicate type name")
	ErrEmptyTypeName     = errors.New("empty type name")
)

// TypeConfig maps a type name to the expression a token must match to trigger a search.
type TypeConfig struct {
	Name       string
	Expression string
}

type compiledType struct {
	name string
	expr *regexp.Regexp
}

// Matcher decides which types apply to a token. It is immutable once built.
type Matcher struct {
	types []compiledType
}

// NewMatcher compiles every type expression, keeping configuration order.
func NewMatcher(types []TypeConfig) (*Matcher, error) {
	seen := make(map[string]bool, len(types))
	compiled := make([]compiledType, 0, len(types))

	for _, t := range types {
		if t.Name == "" {
			return nil, ErrEmptyTypeName
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateType, t.Name)
		}
		expr, err := regexp.Compile(t.Expression)
		if err != nil {
			return nil, fmt.Errorf("%w %q for %s: %v", ErrInvalidExpression, t.Expression, t.Name, err)
		}
		seen[t.Name] = true
		compiled = append(compiled, compiledType{name: t.Name, expr: expr})
	}
	return &Matcher{types: compiled}, nil
}

// Match returns the names of all types whose expression matches word.
func (m *Matcher) Match(word string) []string {
	if word == "" || m == nil {
		return nil
	}
	var matched []string
	for _, t := range m.types {
		if t.expr.MatchString(word) {
			matched = append(matched, t.name)
		}
	}
	return matched
}

// Types returns the configured type names in order.
func (m *Matcher) Types() []string {
	names := make([]string, len(m.types))
	for i, t := range m.types {
		names[i] = t.name
	}
	return names
}
