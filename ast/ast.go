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

// Package ast contains the abstract syntax tree for probabilistic queries:
// atoms applied to variables or ground constants, combined with boolean
// connectives and quantifiers.
package ast

import (
	"fmt"
	"strings"
)

// Term is either a Variable or a ground Constant.
type Term interface {
	// Marker method.
	isTerm()

	// String returns a string representation.
	String() string

	// Equals reports syntactic equality.
	Equals(Term) bool
}

// Variable represents a variable by name. Two variables with the same name
// in the same scope are the same variable: equality and hashing are by name.
type Variable struct {
	Symbol string
}

func (v Variable) isTerm() {}

// String returns the variable's name.
func (v Variable) String() string {
	return v.Symbol
}

// Equals provides syntactic equality for variables.
func (v Variable) Equals(t Term) bool {
	o, ok := t.(Variable)
	return ok && v.Symbol == o.Symbol
}

// Constant represents a ground constant symbol.
type Constant string

func (c Constant) isTerm() {}

// String returns the constant's textual form.
func (c Constant) String() string {
	return string(c)
}

// Equals provides syntactic equality for constants.
func (c Constant) Equals(t Term) bool {
	o, ok := t.(Constant)
	return ok && c == o
}

// Atom represents a relation applied to an ordered tuple of terms, e.g.
// R(x, a). Arity is fixed per relation globally within a store.
type Atom struct {
	Relation string
	Args     []Term
}

func (a Atom) isQuery() {}

// NewAtom is a convenience constructor for a ground or variable atom.
func NewAtom(relation string, args ...Term) Atom {
	return Atom{Relation: relation, Args: args}
}

// IsGround returns true if every argument is a Constant.
func (a Atom) IsGround() bool {
	for _, arg := range a.Args {
		if _, ok := arg.(Constant); !ok {
			return false
		}
	}
	return true
}

// GroundTuple returns the constant tuple for a ground atom. The caller must
// have checked IsGround first.
func (a Atom) GroundTuple() []string {
	tuple := make([]string, len(a.Args))
	for i, arg := range a.Args {
		tuple[i] = arg.String()
	}
	return tuple
}

// Key returns a canonical string encoding of (Relation, Args), suitable for
// use as a map key and for the syntactic-identity checks inclusion-exclusion
// cancellation depends on.
func (a Atom) Key() string {
	var sb strings.Builder
	sb.WriteString(a.Relation)
	sb.WriteByte('(')
	for i, arg := range a.Args {
		if i > 0 {
			sb.WriteByte(',')
		}
		switch t := arg.(type) {
		case Variable:
			sb.WriteByte('?')
			sb.WriteString(t.Symbol)
		case Constant:
			sb.WriteByte('=')
			sb.WriteString(string(t))
		}
	}
	sb.WriteByte(')')
	return sb.String()
}

// String returns the atom's prefix-form representation, e.g. "R(x,a)".
func (a Atom) String() string {
	args := make([]string, len(a.Args))
	for i, arg := range a.Args {
		args[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", a.Relation, strings.Join(args, ","))
}

// Equals provides syntactic equality for atoms: same relation, same
// argument tuple, position by position.
func (a Atom) Equals(u Query) bool {
	o, ok := u.(Atom)
	if !ok || a.Relation != o.Relation || len(a.Args) != len(o.Args) {
		return false
	}
	for i, arg := range a.Args {
		if !arg.Equals(o.Args[i]) {
			return false
		}
	}
	return true
}

// Query is the tagged variant over the query forms: Atom, Negation,
// Conjunction, Disjunction, Exists, Forall. Queries are immutable; rewrites
// produce fresh nodes.
type Query interface {
	// Marker method.
	isQuery()

	// String returns the query's prefix-form representation.
	String() string
}

// Negation represents not(Inner).
type Negation struct {
	Inner Query
}

func (n Negation) isQuery() {}

// String returns the negation's prefix-form representation.
func (n Negation) String() string {
	return fmt.Sprintf("not(%s)", n.Inner.String())
}

// Conjunction represents an n-ary and(Children...).
type Conjunction struct {
	Children []Query
}

func (c Conjunction) isQuery() {}

// NewConjunction builds a Conjunction, collapsing a single child to itself
// rather than wrapping it, so that R4's "single-member groups bypass the
// wrapper" rule holds structurally.
func NewConjunction(children ...Query) Query {
	if len(children) == 1 {
		return children[0]
	}
	return Conjunction{Children: children}
}

// String returns the conjunction's prefix-form representation.
func (c Conjunction) String() string {
	return joinOperator("and", c.Children)
}

// Disjunction represents an n-ary or(Children...).
type Disjunction struct {
	Children []Query
}

func (d Disjunction) isQuery() {}

// NewDisjunction builds a Disjunction, collapsing a single child to itself.
func NewDisjunction(children ...Query) Query {
	if len(children) == 1 {
		return children[0]
	}
	return Disjunction{Children: children}
}

// String returns the disjunction's prefix-form representation.
func (d Disjunction) String() string {
	return joinOperator("or", d.Children)
}

func joinOperator(op string, children []Query) string {
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = c.String()
	}
	return fmt.Sprintf("%s(%s)", op, strings.Join(parts, ","))
}

// Exists represents exist(Var, Inner): existential quantification binding a
// single variable over Inner.
type Exists struct {
	Var   Variable
	Inner Query
}

func (e Exists) isQuery() {}

// String returns the existential's prefix-form representation.
func (e Exists) String() string {
	return fmt.Sprintf("exist(%s,%s)", e.Var.Symbol, e.Inner.String())
}

// Forall represents forall(Var, Inner): universal quantification binding a
// single variable over Inner.
type Forall struct {
	Var   Variable
	Inner Query
}

func (f Forall) isQuery() {}

// String returns the universal's prefix-form representation.
func (f Forall) String() string {
	return fmt.Sprintf("forall(%s,%s)", f.Var.Symbol, f.Inner.String())
}
