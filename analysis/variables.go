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

package analysis

import "github.com/kkty/tipd/ast"

// VarSet is a set of variables, keyed by name since variable identity is
// name-based (see ast.Variable).
type VarSet map[string]ast.Variable

// Add inserts v into the set.
func (s VarSet) Add(v ast.Variable) {
	s[v.Symbol] = v
}

// Has reports whether v is a member of the set.
func (s VarSet) Has(v ast.Variable) bool {
	_, ok := s[v.Symbol]
	return ok
}

// FreeVariables returns the variables occurring in some atom of q that are
// not bound by an enclosing Exists/Forall.
func FreeVariables(q ast.Query) VarSet {
	free := make(VarSet)
	collectFreeVariables(q, make(VarSet), free)
	return free
}

func collectFreeVariables(q ast.Query, bound VarSet, free VarSet) {
	switch n := q.(type) {
	case ast.Atom:
		for _, arg := range n.Args {
			if v, ok := arg.(ast.Variable); ok && !bound.Has(v) {
				free.Add(v)
			}
		}
	case ast.Negation:
		collectFreeVariables(n.Inner, bound, free)
	case ast.Conjunction:
		for _, c := range n.Children {
			collectFreeVariables(c, bound, free)
		}
	case ast.Disjunction:
		for _, c := range n.Children {
			collectFreeVariables(c, bound, free)
		}
	case ast.Exists:
		nested := make(VarSet, len(bound)+1)
		for k, v := range bound {
			nested[k] = v
		}
		nested.Add(n.Var)
		collectFreeVariables(n.Inner, nested, free)
	case ast.Forall:
		nested := make(VarSet, len(bound)+1)
		for k, v := range bound {
			nested[k] = v
		}
		nested.Add(n.Var)
		collectFreeVariables(n.Inner, nested, free)
	}
}

// variablesInAtom returns the set of variables occurring in a, ignoring
// whether they are bound — used internally by Hierarchical and
// BestSeparator, which reason about atom membership rather than scoping.
func variablesInAtom(a ast.Atom) VarSet {
	vs := make(VarSet)
	for _, arg := range a.Args {
		if v, ok := arg.(ast.Variable); ok {
			vs.Add(v)
		}
	}
	return vs
}
