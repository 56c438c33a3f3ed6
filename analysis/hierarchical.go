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

// Hierarchical reports whether q's free-variable atom-coverage sets form a
// laminar family: for every pair of free variables (x, y), the set of
// atoms containing x is a subset of, a superset of, or disjoint from the
// set of atoms containing y. This is the classical necessary condition for
// safety of the positive conjunctive fragment; a non-hierarchical query
// has no separator variable and must be reported Intractable unless it can
// be decomposed some other way (independence, or inclusion-exclusion over
// a disjunction).
func Hierarchical(q ast.Query) bool {
	free := FreeVariables(q)
	atoms := Atoms(q)
	coverage := make(map[string]map[int]bool, len(free))
	for name, v := range free {
		set := make(map[int]bool)
		for i, a := range atoms {
			if variablesInAtom(a).Has(v) {
				set[i] = true
			}
		}
		coverage[name] = set
	}
	names := sortedNames(free)
	for i, x := range names {
		for _, y := range names[i+1:] {
			if !laminarPair(coverage[x], coverage[y]) {
				return false
			}
		}
	}
	return true
}

// laminarPair reports whether a and b are nested (one a subset of the
// other) or disjoint.
func laminarPair(a, b map[int]bool) bool {
	aSubB, bSubA, disjoint := true, true, true
	for i := range a {
		if !b[i] {
			aSubB = false
		} else {
			disjoint = false
		}
	}
	for i := range b {
		if !a[i] {
			bSubA = false
		}
	}
	return aSubB || bSubA || disjoint
}
