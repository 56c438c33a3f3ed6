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
	"sort"

	"golang.org/x/sync/errgroup"

	"bitbucket.org/creachadair/stringset"

	"github.com/kkty/tipd/analysis"
	"github.com/kkty/tipd/ast"
	"github.com/kkty/tipd/store"
)

// evalExists implements R5 for existential quantification: if the bound
// variable is a separator of the body, the quantifier eliminates to
// 1 - prod(1-eval(body[v:=c])) over the restricted active domain.
// Otherwise nothing in R1-R7 applies to an Exists node and the query is
// Intractable.
func (e *evaluator) evalExists(n ast.Exists, depth int) (store.Probability, error) {
	if !analysis.SeparatorVariable(n.Var, n.Inner) {
		return 0, e.intractable(n)
	}
	e.stats.ruleFirings("R5").Inc()

	domain := e.restrictedDomain(n.Var, n.Inner)
	complements, err := e.evalDomain(n.Inner, n.Var, domain, depth)
	if err != nil {
		return 0, err
	}
	complement := store.Probability(1)
	for _, p := range complements {
		complement *= 1 - p
	}
	return 1 - complement, nil
}

// evalForall implements R5 for universal quantification, combining
// per-constant results by product instead of complement-product.
func (e *evaluator) evalForall(n ast.Forall, depth int) (store.Probability, error) {
	if !analysis.SeparatorVariable(n.Var, n.Inner) {
		return 0, e.intractable(n)
	}
	e.stats.ruleFirings("R5").Inc()

	domain := e.restrictedDomain(n.Var, n.Inner)
	results, err := e.evalDomain(n.Inner, n.Var, domain, depth)
	if err != nil {
		return 0, err
	}
	product := store.Probability(1)
	for _, p := range results {
		product *= p
	}
	return product, nil
}

// restrictedDomain returns the active domain restricted to the
// relation/position pairs v occurs at in q, sorted for deterministic
// enumeration order.
func (e *evaluator) restrictedDomain(v ast.Variable, q ast.Query) []string {
	union := stringset.New()
	for _, rp := range analysis.Positions(v, q) {
		union = union.Union(e.store.ValuesAt(rp.Relation, rp.Position))
	}
	values := union.Elements()
	sort.Strings(values)
	return values
}

// evalDomain evaluates q[v := c] for every c in domain, in parallel when
// the evaluator's concurrency option permits it.
func (e *evaluator) evalDomain(q ast.Query, v ast.Variable, domain []string, depth int) ([]store.Probability, error) {
	results := make([]store.Probability, len(domain))
	if e.concurrency <= 1 {
		for i, c := range domain {
			p, err := e.eval(analysis.Rewrite(q, v, ast.Constant(c)), depth+1)
			if err != nil {
				return nil, err
			}
			results[i] = p
		}
		return results, nil
	}

	group, _ := errgroup.WithContext(context.Background())
	group.SetLimit(e.concurrency)
	for i, c := range domain {
		i, c := i, c
		group.Go(func() error {
			p, err := e.eval(analysis.Rewrite(q, v, ast.Constant(c)), depth+1)
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
