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
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/kkty/tipd/analysis"
	"github.com/kkty/tipd/ast"
	"github.com/kkty/tipd/store"
)

// evalConjunction handles R3/R4 (independent decomposition) and falls
// back to R7 (reduction to disjunctive form) when no group of children
// is independent of the rest.
func (e *evaluator) evalConjunction(children []ast.Query, depth int) (store.Probability, error) {
	children = flattenConjunctions(children)
	if len(children) == 0 {
		return 1, nil
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
		probs, err := e.evalGroups(groups, depth, false)
		if err != nil {
			return 0, err
		}
		product := store.Probability(1)
		for _, p := range probs {
			product *= p
		}
		return product, nil
	}

	// R7: no independent decomposition. Reduce to disjunctive form by
	// De Morgan duality and apply R6 there.
	e.stats.ruleFirings("R7").Inc()
	duals := make([]ast.Query, len(children))
	for i, c := range children {
		duals[i] = negateDual(c)
	}
	dualProb, err := e.eval(ast.Disjunction{Children: duals}, depth+1)
	if err != nil {
		return 0, err
	}
	return 1 - dualProb, nil
}

// negateDual returns the logical negation of q, collapsing a
// double negation instead of nesting it, so that repeatedly dualizing a
// query (R7 applied to its own R6 expansion) reaches a ground or
// genuinely-cyclic form in bounded steps rather than growing an
// ever-deeper stack of Negation wrappers.
func negateDual(q ast.Query) ast.Query {
	if n, ok := q.(ast.Negation); ok {
		return n.Inner
	}
	return ast.Negation{Inner: q}
}

// flattenConjunctions inlines any ast.Conjunction child in place of
// itself, by associativity of and(...). Without this, a conjunction
// built by wrapping another conjunction (as R4 grouping and R6/R7's
// subset terms both do) hides duplicate or related atoms one level deep,
// which is exactly what the syntactic-cancellation step of inclusion-
// exclusion needs to see to terminate instead of re-deriving the
// original query through repeated De Morgan duals.
func flattenConjunctions(children []ast.Query) []ast.Query {
	var flat []ast.Query
	for _, c := range children {
		if nested, ok := c.(ast.Conjunction); ok {
			flat = append(flat, flattenConjunctions(nested.Children)...)
		} else {
			flat = append(flat, c)
		}
	}
	return flat
}

// evalGroups evaluates each independence group produced by
// analysis.Decompose, in parallel when the evaluator's concurrency
// option permits it. complement selects whether a multi-member group is
// wrapped as a Disjunction rather than a Conjunction (used by
// evalDisjunction, where groups combine by complement-product rather
// than product); a single-member group is evaluated bare either way.
func (e *evaluator) evalGroups(groups [][]ast.Query, depth int, complement bool) ([]store.Probability, error) {
	wrap := func(group []ast.Query) ast.Query {
		if complement {
			if len(group) == 1 {
				return group[0]
			}
			return ast.Disjunction{Children: group}
		}
		if len(group) == 1 {
			return group[0]
		}
		return ast.Conjunction{Children: group}
	}

	results := make([]store.Probability, len(groups))
	if e.concurrency <= 1 {
		for i, g := range groups {
			p, err := e.eval(wrap(g), depth+1)
			if err != nil {
				return nil, err
			}
			results[i] = p
		}
		return results, nil
	}

	group, _ := errgroup.WithContext(context.Background())
	group.SetLimit(e.concurrency)
	for i, g := range groups {
		i, g := i, g
		group.Go(func() error {
			p, err := e.eval(wrap(g), depth+1)
			if err != nil {
				return err
			}
			results[i] = p
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
