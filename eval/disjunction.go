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

package eval

import (
	"math/bits"

	"github.com/kkty/tipd/analysis"
	"github.com/kkty/tipd/ast"
	"github.com/kkty/tipd/store"
)

// evalDisjunction handles R3/R4 (independent decomposition, combined by
// complement-product) and falls back to R6 (inclusion-exclusion) when no
// group of children is independent of the rest.
func (e *evaluator) evalDisjunction(children []ast.Query, depth int) (store.Probability, error) {
	children = flattenDisjunctions(children)
	if len(children) == 0 {
		return 0, nil
	}
	if len(children) == 1 {
		return e.eval(children[0], depth)
	}

	groups := analysis.Decompose(children)
	if len(groups) > 1 {
		if len(children) == 2 {
			e.stats.ruleFirings("R3").Inc()
		} else {
			e.stats.ruleFirings("R4").Inc()
		}
		probs, err := e.evalGroups(groups, depth, true)
		if err != nil {
			return 0, err
		}
		complement := store.Probability(1)
		for _, p := range probs {
			complement *= 1 - p
		}
		return 1 - complement, nil
	}

	// R6 fires on a quantifier-free disjunction of conjunctions of atoms;
	// strip_existentials reaches that form the same way spec.md §4.3
	// describes (leftover Exists nodes can appear here if a caller builds
	// a disjunction containing one directly, rather than via R5).
	stripped := make([]ast.Query, len(children))
	for i, c := range children {
		stripped[i] = analysis.StripExistentials(c)
	}
	return e.inclusionExclusion(stripped, depth)
}

// inclusionExclusion implements R6: Pr[C1 v ... v Ck] via the Mobius
// expansion over non-empty subsets of the (deduplicated) disjuncts,
// canceling syntactically identical disjuncts first since Pr[A v A] =
// Pr[A] and keeping duplicates would only inflate the subset count for
// no benefit.
func (e *evaluator) inclusionExclusion(children []ast.Query, depth int) (store.Probability, error) {
	disjuncts := dedupeByString(children)
	if len(disjuncts) > e.maxDisjuncts {
		return 0, e.intractable(ast.Disjunction{Children: disjuncts})
	}

	k := len(disjuncts)
	total := store.Probability(0)
	for mask := 1; mask < (1 << uint(k)); mask++ {
		var subset []ast.Query
		for i := 0; i < k; i++ {
			if mask&(1<<uint(i)) != 0 {
				subset = append(subset, disjuncts[i])
			}
		}
		e.stats.ieExpansions.Inc()
		var term ast.Query = ast.Conjunction{Children: subset}
		if len(subset) == 1 {
			term = subset[0]
		}
		p, err := e.eval(term, depth+1)
		if err != nil {
			return 0, err
		}
		if bits.OnesCount(uint(mask))%2 == 1 {
			total += p
		} else {
			total -= p
		}
	}
	return total, nil
}

// flattenDisjunctions inlines any ast.Disjunction child in place of
// itself, mirroring flattenConjunctions for or(...).
func flattenDisjunctions(children []ast.Query) []ast.Query {
	var flat []ast.Query
	for _, c := range children {
		if nested, ok := c.(ast.Disjunction); ok {
			flat = append(flat, flattenDisjunctions(nested.Children)...)
		} else {
			flat = append(flat, c)
		}
	}
	return flat
}

func dedupeByString(children []ast.Query) []ast.Query {
	seen := make(map[string]bool, len(children))
	var out []ast.Query
	for _, c := range children {
		key := c.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}
