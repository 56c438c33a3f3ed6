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

// PushDisjunction applies the distributive law to a disjunction whose
// children are atoms or conjunctions: or(and(A1,A2), B) becomes
// and(or(A1,B), or(A2,B)), generalized to n children by taking the
// Cartesian product of each child's conjuncts (a non-conjunction child
// counts as a single conjunct). If no child of d is a
// conjunction, d is returned unchanged.
func PushDisjunction(d ast.Disjunction) ast.Query {
	anyConjunction := false
	disjunctsPerChild := make([][]ast.Query, len(d.Children))
	for i, c := range d.Children {
		if conj, ok := c.(ast.Conjunction); ok {
			anyConjunction = true
			disjunctsPerChild[i] = conj.Children
		} else {
			disjunctsPerChild[i] = []ast.Query{c}
		}
	}
	if !anyConjunction {
		return d
	}
	combinations := cartesianProduct(disjunctsPerChild)
	conjuncts := make([]ast.Query, len(combinations))
	for i, combo := range combinations {
		conjuncts[i] = ast.NewDisjunction(combo...)
	}
	return ast.NewConjunction(conjuncts...)
}

func cartesianProduct(sets [][]ast.Query) [][]ast.Query {
	result := [][]ast.Query{{}}
	for _, set := range sets {
		var next [][]ast.Query
		for _, prefix := range result {
			for _, elem := range set {
				combo := make([]ast.Query, len(prefix)+1)
				copy(combo, prefix)
				combo[len(prefix)] = elem
				next = append(next, combo)
			}
		}
		result = next
	}
	return result
}

// StripExistentials removes every Exists node from q, leaving a
// quantifier-free query whose previously bound variables are now free.
// Universal quantifiers are left untouched: they are not part of the
// disjunctive-normal-form / inclusion-exclusion path this is used for.
func StripExistentials(q ast.Query) ast.Query {
	switch n := q.(type) {
	case ast.Exists:
		return StripExistentials(n.Inner)
	case ast.Negation:
		return ast.Negation{Inner: StripExistentials(n.Inner)}
	case ast.Conjunction:
		return ast.Conjunction{Children: stripAll(n.Children)}
	case ast.Disjunction:
		return ast.Disjunction{Children: stripAll(n.Children)}
	default:
		return q
	}
}

func stripAll(children []ast.Query) []ast.Query {
	stripped := make([]ast.Query, len(children))
	for i, c := range children {
		stripped[i] = StripExistentials(c)
	}
	return stripped
}
