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

// Package eval implements the lifted evaluator for tuple-independent
// probabilistic queries: Eval(q, store) returns the marginal probability
// that q holds in a random possible world sampled from the store's
// per-tuple Bernoulli distribution, or ErrIntractable if no safe
// decomposition rule applies.
package eval

import (
	"errors"
	"fmt"
	"sync"

	"github.com/golang/glog"

	"github.com/kkty/tipd/ast"
	"github.com/kkty/tipd/store"
)

// ErrIntractable is the sentinel returned (wrapped with context) when the
// evaluator exhausts its rule set without finding a safe decomposition.
// It is a permanent, deterministic property of the (query, schema) pair:
// retrying does not help.
var ErrIntractable = errors.New("query is not safe for lifted evaluation")

// defaultMaxDisjuncts bounds the inclusion-exclusion expansion (R6): a
// disjunction with more disjuncts than this, after cancellation, is
// reported Intractable rather than expanded, per spec.md §5.
const defaultMaxDisjuncts = 20

// evaluator holds the read-only state shared across a single Eval call's
// recursion: the backing store, accumulated Stats, and the resource
// limits that bound recursion (disjunct ceiling) and optional
// parallelism (concurrency). Mirrors the teacher's naiveEngine struct in
// shape: a small value holding its collaborators, with the actual
// recursive work done by methods on it.
type evaluator struct {
	store        *store.Store
	stats        *Stats
	maxDisjuncts int
	concurrency  int

	// path holds the canonical string of every query currently being
	// evaluated on the active recursion stack, guarded by pathMu since
	// WithConcurrency fans sibling subqueries out across goroutines. R6/R7
	// can, for a query with no safe decomposition, regenerate a
	// structurally identical query through repeated De Morgan duals;
	// detecting a repeat here is the termination check for that case and
	// is reported as Intractable, which is the correct verdict: a cycle
	// with no shrinking progress means no rule in R1-R7 actually applies.
	pathMu sync.Mutex
	path   map[string]bool
}

// Eval computes Pr[q] against s. The evaluator is pure and, by default,
// single-threaded and stack-recursive; pass WithConcurrency to allow
// fanning independent subproblems out over goroutines.
func Eval(q ast.Query, s *store.Store, opts ...Option) (store.Probability, error) {
	e := &evaluator{
		store:        s,
		stats:        NewStats(),
		maxDisjuncts: defaultMaxDisjuncts,
		concurrency:  1,
		path:         make(map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	p, err := e.eval(q, 0)
	if err != nil {
		return 0, err
	}
	return clamp(p), nil
}

// EvalWithStats behaves like Eval but also returns the Stats accumulated
// during evaluation, for callers (such as cmd/tipd's -stats flag) that
// want rule-firing counts without threading a *Stats through Option.
func EvalWithStats(q ast.Query, s *store.Store, opts ...Option) (store.Probability, *Stats, error) {
	e := &evaluator{
		store:        s,
		stats:        NewStats(),
		maxDisjuncts: defaultMaxDisjuncts,
		concurrency:  1,
		path:         make(map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	p, err := e.eval(q, 0)
	if err != nil {
		return 0, e.stats, err
	}
	return clamp(p), e.stats, nil
}

func clamp(p store.Probability) store.Probability {
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}

// eval is the recursive core implementing R1-R8 in priority order. depth
// is used only for trace indentation.
func (e *evaluator) eval(q ast.Query, depth int) (store.Probability, error) {
	if glog.V(2) {
		glog.V(2).Infof("%sevaluating: %s", indent(depth), q.String())
	}

	// R1: ground atom.
	if a, ok := q.(ast.Atom); ok && a.IsGround() {
		e.stats.groundLookups.Inc()
		e.stats.ruleFirings("R1").Inc()
		return e.store.Get(a.Relation, a.GroundTuple()), nil
	}

	key := q.String()
	e.pathMu.Lock()
	if e.path[key] {
		e.pathMu.Unlock()
		return 0, e.intractable(q)
	}
	e.path[key] = true
	e.pathMu.Unlock()
	defer func() {
		e.pathMu.Lock()
		delete(e.path, key)
		e.pathMu.Unlock()
	}()

	switch n := q.(type) {
	case ast.Negation:
		e.stats.ruleFirings("R2").Inc()
		inner, err := e.eval(n.Inner, depth+1)
		if err != nil {
			return 0, err
		}
		return 1 - inner, nil

	case ast.Conjunction:
		return e.evalConjunction(n.Children, depth)

	case ast.Disjunction:
		return e.evalDisjunction(n.Children, depth)

	case ast.Exists:
		return e.evalExists(n, depth)

	case ast.Forall:
		return e.evalForall(n, depth)

	case ast.Atom:
		// A non-ground atom with no enclosing quantifier has free
		// variables the caller never bound: nothing in R1-R7 applies.
		return 0, e.intractable(q)
	}

	return 0, fmt.Errorf("eval: unrecognized query form %T", q)
}

func (e *evaluator) intractable(q ast.Query) error {
	return fmt.Errorf("%w: %s", ErrIntractable, q.String())
}

func indent(depth int) string {
	b := make([]byte, depth*2)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
