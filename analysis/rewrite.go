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

// Rewrite replaces every occurrence of variable v anywhere in q with the
// ground constant c, and returns a freshly built query; q is never
// mutated. Quantifier-bound variables are not alpha-renamed: if v is equal
// to a bound variable of q, shadowing that binder is the caller's
// responsibility (see spec Open Questions).
func Rewrite(q ast.Query, v ast.Variable, c ast.Constant) ast.Query {
	switch n := q.(type) {
	case ast.Atom:
		return rewriteAtom(n, v, c)
	case ast.Negation:
		return ast.Negation{Inner: Rewrite(n.Inner, v, c)}
	case ast.Conjunction:
		return ast.Conjunction{Children: rewriteAll(n.Children, v, c)}
	case ast.Disjunction:
		return ast.Disjunction{Children: rewriteAll(n.Children, v, c)}
	case ast.Exists:
		return ast.Exists{Var: n.Var, Inner: Rewrite(n.Inner, v, c)}
	case ast.Forall:
		return ast.Forall{Var: n.Var, Inner: Rewrite(n.Inner, v, c)}
	}
	return q
}

func rewriteAtom(a ast.Atom, v ast.Variable, c ast.Constant) ast.Atom {
	args := make([]ast.Term, len(a.Args))
	for i, arg := range a.Args {
		if existing, ok := arg.(ast.Variable); ok && existing.Equals(v) {
			args[i] = c
		} else {
			args[i] = arg
		}
	}
	return ast.Atom{Relation: a.Relation, Args: args}
}

func rewriteAll(children []ast.Query, v ast.Variable, c ast.Constant) []ast.Query {
	rewritten := make([]ast.Query, len(children))
	for i, child := range children {
		rewritten[i] = Rewrite(child, v, c)
	}
	return rewritten
}
