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

// Package analysis contains pure syntactic predicates over ast.Query: atom
// enumeration, free-variable collection, unifiability, independence,
// separator-variable detection, hierarchical-query detection, and
// variable-for-constant rewriting. None of these consult a store.
package analysis

import (
	"bitbucket.org/creachadair/stringset"

	"github.com/kkty/tipd/ast"
)

// Atoms returns every atom occurrence in q, depth-first, left to right.
// Duplicates are preserved for multiset-sensitive callers (e.g.
// Independent, which must see every occurrence, not just distinct atoms);
// callers that need a set should dedupe by ast.Atom.Key().
func Atoms(q ast.Query) []ast.Atom {
	var atoms []ast.Atom
	collectAtoms(q, &atoms)
	return atoms
}

func collectAtoms(q ast.Query, out *[]ast.Atom) {
	switch n := q.(type) {
	case ast.Atom:
		*out = append(*out, n)
	case ast.Negation:
		collectAtoms(n.Inner, out)
	case ast.Conjunction:
		for _, c := range n.Children {
			collectAtoms(c, out)
		}
	case ast.Disjunction:
		for _, c := range n.Children {
			collectAtoms(c, out)
		}
	case ast.Exists:
		collectAtoms(n.Inner, out)
	case ast.Forall:
		collectAtoms(n.Inner, out)
	}
}

// Relations returns the set of relation names occurring in q, the image of
// Atoms(q) under the relation accessor.
func Relations(q ast.Query) stringset.Set {
	rels := stringset.New()
	for _, a := range Atoms(q) {
		rels.Add(a.Relation)
	}
	return rels
}
