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

import (
	"sort"

	"github.com/kkty/tipd/ast"
)

// SeparatorVariable reports whether v is a "root variable" of q: every atom
// of q contains v exactly once, and for each relation r occurring in q
// there is a single position i_r such that every atom of relation r has v
// at position i_r. This is the classical condition enabling lifted
// quantifier elimination (R5).
func SeparatorVariable(v ast.Variable, q ast.Query) bool {
	atoms := Atoms(q)
	if len(atoms) == 0 {
		return false
	}
	positionByRelation := make(map[string]int)
	for _, a := range atoms {
		pos := -1
		occurrences := 0
		for i, arg := range a.Args {
			if vv, ok := arg.(ast.Variable); ok && vv.Equals(v) {
				occurrences++
				pos = i
			}
		}
		if occurrences != 1 {
			return false
		}
		if want, ok := positionByRelation[a.Relation]; ok {
			if want != pos {
				return false
			}
		} else {
			positionByRelation[a.Relation] = pos
		}
	}
	return true
}

// Positions returns, for every (relation, position) pair at which v
// occurs among q's atoms, the relation and position. When v is a
// separator of q this enumerates exactly the (r, i_r) pairs R5 needs to
// build the restricted active domain D.
func Positions(v ast.Variable, q ast.Query) []RelationPosition {
	seen := make(map[RelationPosition]bool)
	var out []RelationPosition
	for _, a := range Atoms(q) {
		for i, arg := range a.Args {
			if vv, ok := arg.(ast.Variable); ok && vv.Equals(v) {
				rp := RelationPosition{Relation: a.Relation, Position: i}
				if !seen[rp] {
					seen[rp] = true
					out = append(out, rp)
				}
			}
		}
	}
	return out
}

// RelationPosition names a single argument position of a relation.
type RelationPosition struct {
	Relation string
	Position int
}

// BestSeparator returns the free variable of q that is a separator and
// occurs in the most atoms, applying the "most atoms" tie-break heuristic
// from the spec: when several separators exist any choice yields the same
// result, so favoring the one that maximizes factorization is purely an
// efficiency preference.
func BestSeparator(q ast.Query) (ast.Variable, bool) {
	free := FreeVariables(q)
	var best ast.Variable
	bestCount := -1
	found := false
	// Iterate in a fixed order (sorted by name) so the choice is
	// deterministic across runs even though map iteration order is not.
	for _, name := range sortedNames(free) {
		v := free[name]
		if !SeparatorVariable(v, q) {
			continue
		}
		count := 0
		for _, a := range Atoms(q) {
			if variablesInAtom(a).Has(v) {
				count++
			}
		}
		if count > bestCount {
			best = v
			bestCount = count
			found = true
		}
	}
	return best, found
}

func sortedNames(vs VarSet) []string {
	names := make([]string, 0, len(vs))
	for name := range vs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
