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

// Unifiable reports whether a1 and a2 could describe the same ground
// tuple: their relation names must match, and position-wise no pair of
// ground constants may disagree. A variable unifies with anything.
func Unifiable(a1, a2 ast.Atom) bool {
	if a1.Relation != a2.Relation || len(a1.Args) != len(a2.Args) {
		return false
	}
	for i, arg1 := range a1.Args {
		arg2 := a2.Args[i]
		c1, ok1 := arg1.(ast.Constant)
		c2, ok2 := arg2.(ast.Constant)
		if ok1 && ok2 && c1 != c2 {
			return false
		}
	}
	return true
}

// Independent reports whether the events "Q1 holds" and "Q2 holds" are
// probabilistically independent in the TIPD: true iff no atom of Q1
// unifies with any atom of Q2.
func Independent(q1, q2 ast.Query) bool {
	atoms1 := Atoms(q1)
	atoms2 := Atoms(q2)
	for _, a1 := range atoms1 {
		for _, a2 := range atoms2 {
			if Unifiable(a1, a2) {
				return false
			}
		}
	}
	return true
}
