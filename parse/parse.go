// Copyright 2022 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package parse converts the surface syntax of probabilistic queries
// into ast.Query values: the prefix S-expression form
// (and(R(x), not(S(x))), exist(x, R(x))), and the quantifier-list form
// ("v1, v2 | R(v1, v2), S(z)"). Grounded on the bracket-level scanner of
// the original implementation's parse_query function, generalized from
// its binary-only and/or to ast's n-ary Conjunction/Disjunction.
package parse

import (
	"fmt"
	"strings"

	"github.com/kkty/tipd/ast"
)

// ParseError reports a surface-syntax violation: unbalanced parentheses,
// wrong arity for a connective, a quantifier list with a duplicate or
// shadowed variable, and so on. It never arises once a Query value
// exists; the evaluator has a disjoint error taxonomy (eval.ErrIntractable).
type ParseError struct {
	Input string
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse: %s: %q", e.Msg, e.Input)
}

func errorf(input, format string, args ...any) error {
	return &ParseError{Input: input, Msg: fmt.Sprintf(format, args...)}
}

// Query parses the prefix S-expression surface syntax:
//
//	atom(term, ...)
//	and(Q, ...) | or(Q, ...)
//	not(Q)
//	exist(v, Q) | forall(v, Q)
func Query(src string) (ast.Query, error) {
	return parseQuery(strings.TrimSpace(src), make(map[string]ast.Variable))
}

func parseQuery(src string, bound map[string]ast.Variable) (ast.Query, error) {
	op, children, err := splitCall(src)
	if err != nil {
		return nil, err
	}

	switch op {
	case "not":
		if len(children) != 1 {
			return nil, errorf(src, "not() takes exactly one argument")
		}
		inner, err := parseQuery(children[0], bound)
		if err != nil {
			return nil, err
		}
		return ast.Negation{Inner: inner}, nil

	case "and", "or":
		if len(children) < 1 {
			return nil, errorf(src, "%s() takes at least one argument", op)
		}
		parsed := make([]ast.Query, len(children))
		for i, c := range children {
			q, err := parseQuery(c, bound)
			if err != nil {
				return nil, err
			}
			parsed[i] = q
		}
		if op == "and" {
			return ast.NewConjunction(parsed...), nil
		}
		return ast.NewDisjunction(parsed...), nil

	case "exist", "forall":
		if len(children) != 2 {
			return nil, errorf(src, "%s() takes exactly two arguments", op)
		}
		name := strings.TrimSpace(children[0])
		if name == "" {
			return nil, errorf(src, "%s() variable name is empty", op)
		}
		if _, shadowed := bound[name]; shadowed {
			return nil, errorf(src, "variable %q is bound by an enclosing quantifier", name)
		}
		v := ast.Variable{Symbol: name}
		nested := make(map[string]ast.Variable, len(bound)+1)
		for k, vv := range bound {
			nested[k] = vv
		}
		nested[name] = v
		inner, err := parseQuery(children[1], nested)
		if err != nil {
			return nil, err
		}
		if op == "exist" {
			return ast.Exists{Var: v, Inner: inner}, nil
		}
		return ast.Forall{Var: v, Inner: inner}, nil

	default:
		return parseAtom(src, op, children, bound)
	}
}

func parseAtom(src, relation string, children []string, bound map[string]ast.Variable) (ast.Atom, error) {
	if relation == "" {
		return ast.Atom{}, errorf(src, "empty relation name")
	}
	args := make([]ast.Term, len(children))
	for i, c := range children {
		name := strings.TrimSpace(c)
		if name == "" {
			return ast.Atom{}, errorf(src, "empty term in %s(...)", relation)
		}
		if v, ok := bound[name]; ok {
			args[i] = v
		} else {
			args[i] = ast.Constant(name)
		}
	}
	return ast.Atom{Relation: relation, Args: args}, nil
}

// splitCall scans "op(c1, c2, ...)" into its operator name and top-level,
// comma-separated argument strings. Commas and parentheses nested inside
// an argument (for a nested call) are not split on, matching the
// original scanner's level-counting approach.
func splitCall(src string) (string, []string, error) {
	var op string
	var children []string

	level := 0
	var buf []rune
	sawOpen := false
	for _, r := range src {
		switch {
		case r == '(':
			if level == 0 {
				op = string(buf)
				buf = nil
				sawOpen = true
			} else {
				buf = append(buf, r)
			}
			level++
		case r == ')':
			level--
			if level < 0 {
				return "", nil, errorf(src, "unbalanced parentheses")
			}
			if level == 0 {
				children = append(children, string(buf))
				buf = nil
			} else {
				buf = append(buf, r)
			}
		case r == ',' && level == 1:
			children = append(children, string(buf))
			buf = nil
		case r == ' ' || r == '\t' || r == '\n':
			if level > 0 {
				buf = append(buf, r)
			}
		default:
			buf = append(buf, r)
		}
	}
	if level != 0 {
		return "", nil, errorf(src, "unbalanced parentheses")
	}
	if !sawOpen {
		return "", nil, errorf(src, "missing (...)")
	}
	if len(children) == 1 && strings.TrimSpace(children[0]) == "" {
		// A zero-arity call, e.g. "baz()".
		return op, nil, nil
	}
	trimmed := make([]string, len(children))
	for i, c := range children {
		trimmed[i] = strings.TrimSpace(c)
	}
	return op, trimmed, nil
}
