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
	"errors"
	"math"
	"testing"

	"github.com/kkty/tipd/ast"
	"github.com/kkty/tipd/store"
)

func v(name string) ast.Variable { return ast.Variable{Symbol: name} }
func c(name string) ast.Constant { return ast.Constant(name) }

func closeEnough(t *testing.T, got, want store.Probability) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSingleAtom(t *testing.T) {
	s := store.New()
	s.Add("R", []string{"a"}, 0.4)

	got, err := Eval(ast.NewAtom("R", c("a")), s)
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	closeEnough(t, got, 0.4)

	got, err = Eval(ast.NewAtom("R", c("b")), s)
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	closeEnough(t, got, 0.0)
}

func TestIndependentConjunction(t *testing.T) {
	s := store.New()
	s.Add("R", []string{"a"}, 0.5)
	s.Add("S", []string{"b"}, 0.4)

	q := ast.Conjunction{Children: []ast.Query{ast.NewAtom("R", c("a")), ast.NewAtom("S", c("b"))}}
	got, err := Eval(q, s)
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	closeEnough(t, got, 0.20)
}

func TestIndependentDisjunction(t *testing.T) {
	s := store.New()
	s.Add("R", []string{"a"}, 0.5)
	s.Add("S", []string{"b"}, 0.4)

	q := ast.Disjunction{Children: []ast.Query{ast.NewAtom("R", c("a")), ast.NewAtom("S", c("b"))}}
	got, err := Eval(q, s)
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	closeEnough(t, got, 0.70)
}

func TestExistentialOverSeparator(t *testing.T) {
	s := store.New()
	s.Add("R", []string{"a"}, 0.5)
	s.Add("R", []string{"b"}, 0.5)
	s.Add("R", []string{"c"}, 0.5)

	q := ast.Exists{Var: v("x"), Inner: ast.NewAtom("R", v("x"))}
	got, err := Eval(q, s)
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	closeEnough(t, got, 1-0.5*0.5*0.5)
}

func TestIndependentJoinHierarchical(t *testing.T) {
	s := store.New()
	s.Add("R", []string{"a"}, 0.5)
	s.Add("R", []string{"b"}, 0.5)
	s.Add("S", []string{"a", "p"}, 0.6)
	s.Add("S", []string{"b", "p"}, 0.6)

	q := ast.Exists{
		Var: v("x"),
		Inner: ast.Conjunction{Children: []ast.Query{
			ast.NewAtom("R", v("x")),
			ast.NewAtom("S", v("x"), c("p")),
		}},
	}
	got, err := Eval(q, s)
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	closeEnough(t, got, 1-(1-0.3)*(1-0.3))
}

func TestIntractableNonHierarchical(t *testing.T) {
	s := store.New()
	s.Add("R", []string{"a"}, 0.5)
	s.Add("S", []string{"a", "b"}, 0.5)
	s.Add("T", []string{"b"}, 0.5)

	q := ast.Exists{
		Var: v("x"),
		Inner: ast.Exists{
			Var: v("y"),
			Inner: ast.Conjunction{Children: []ast.Query{
				ast.NewAtom("R", v("x")),
				ast.Conjunction{Children: []ast.Query{
					ast.NewAtom("S", v("x"), v("y")),
					ast.NewAtom("T", v("y")),
				}},
			}},
		},
	}
	_, err := Eval(q, s)
	if !errors.Is(err, ErrIntractable) {
		t.Fatalf("Eval() error = %v, want ErrIntractable", err)
	}
}

func TestNegationComplement(t *testing.T) {
	s := store.New()
	s.Add("R", []string{"a"}, 0.3)

	q := ast.NewAtom("R", c("a"))
	p, err := Eval(q, s)
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	np, err := Eval(ast.Negation{Inner: q}, s)
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	closeEnough(t, p+np, 1.0)
}

func TestDeMorganConsistencyForIndependentConjuncts(t *testing.T) {
	s := store.New()
	s.Add("R", []string{"a"}, 0.3)
	s.Add("S", []string{"b"}, 0.7)

	q1 := ast.NewAtom("R", c("a"))
	q2 := ast.NewAtom("S", c("b"))

	left, err := Eval(ast.Negation{Inner: ast.Conjunction{Children: []ast.Query{q1, q2}}}, s)
	if err != nil {
		t.Fatalf("Eval(not(and)) error = %v", err)
	}
	right, err := Eval(ast.Disjunction{Children: []ast.Query{
		ast.Negation{Inner: q1},
		ast.Negation{Inner: q2},
	}}, s)
	if err != nil {
		t.Fatalf("Eval(or(not,not)) error = %v", err)
	}
	closeEnough(t, left, right)
}

func TestQuantifierDuality(t *testing.T) {
	s := store.New()
	s.Add("R", []string{"a"}, 0.4)
	s.Add("R", []string{"b"}, 0.6)

	left, err := Eval(ast.Negation{Inner: ast.Exists{Var: v("x"), Inner: ast.NewAtom("R", v("x"))}}, s)
	if err != nil {
		t.Fatalf("Eval(not(exist)) error = %v", err)
	}
	right, err := Eval(ast.Forall{Var: v("x"), Inner: ast.Negation{Inner: ast.NewAtom("R", v("x"))}}, s)
	if err != nil {
		t.Fatalf("Eval(forall(not)) error = %v", err)
	}
	closeEnough(t, left, right)
}

func TestRangeInvariant(t *testing.T) {
	s := store.New()
	s.Add("R", []string{"a"}, 0.5)
	s.Add("S", []string{"b"}, 0.5)
	q := ast.Disjunction{Children: []ast.Query{ast.NewAtom("R", c("a")), ast.NewAtom("S", c("b"))}}
	got, err := Eval(q, s)
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	if got < 0 || got > 1 {
		t.Errorf("Eval() = %v, want value in [0,1]", got)
	}
}

func TestCorrelatedDisjunctionInclusionExclusion(t *testing.T) {
	// or(R(a,b), R(a,c)) shares no atom structure issue across disjuncts
	// (they don't unify, different tuples), so independence actually
	// applies; use a genuinely correlated pair instead: R(x) appearing
	// under two existentials sharing the same unbound constant isn't
	// expressible without variables, so test IE directly at the atom
	// level via a disjunction the evaluator cannot split by independence.
	s := store.New()
	s.Add("R", []string{"a"}, 0.5)
	s.Add("S", []string{"a"}, 0.4)

	// or(R(a), and(R(a), S(a))): R(a) occurs in both disjuncts, so they
	// are not independent and R6 must fire.
	inner := ast.Conjunction{Children: []ast.Query{ast.NewAtom("R", c("a")), ast.NewAtom("S", c("a"))}}
	q := ast.Disjunction{Children: []ast.Query{ast.NewAtom("R", c("a")), inner}}
	got, err := Eval(q, s)
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	// Pr[R(a) or (R(a) and S(a))] = Pr[R(a)] by absorption; inclusion-
	// exclusion must reduce to this even though it takes the long way:
	// Pr[R(a)] + Pr[R(a) and S(a)] - Pr[R(a) and R(a) and S(a)]
	// = 0.5 + 0.2 - 0.2 = 0.5.
	closeEnough(t, got, 0.5)
}

func TestWithConcurrencyMatchesSequential(t *testing.T) {
	s := store.New()
	for _, x := range []string{"a", "b", "c", "d"} {
		s.Add("R", []string{x}, 0.3)
	}
	q := ast.Exists{Var: v("x"), Inner: ast.NewAtom("R", v("x"))}

	seq, err := Eval(q, s)
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	par, err := Eval(q, s, WithConcurrency(4))
	if err != nil {
		t.Fatalf("Eval() with concurrency error = %v", err)
	}
	closeEnough(t, seq, par)
}

func TestMaxDisjunctsCeiling(t *testing.T) {
	s := store.New()
	s.Add("R", []string{"shared"}, 0.5)
	var children []ast.Query
	for i := 0; i < 5; i++ {
		name := string(rune('a' + i))
		s.Add("S", []string{name}, 0.5)
		// Every disjunct shares the R(shared) atom, so none of them is
		// independent of the rest and the only path is R6.
		children = append(children, ast.Conjunction{Children: []ast.Query{
			ast.NewAtom("R", c("shared")),
			ast.NewAtom("S", c(name)),
		}})
	}
	q := ast.Disjunction{Children: children}
	_, err := Eval(q, s, WithMaxDisjuncts(2))
	if !errors.Is(err, ErrIntractable) {
		t.Fatalf("Eval() error = %v, want ErrIntractable from the disjunct ceiling", err)
	}
}

func TestStatsCountsRuleFirings(t *testing.T) {
	s := store.New()
	s.Add("R", []string{"a"}, 0.5)
	s.Add("S", []string{"b"}, 0.4)

	q := ast.Conjunction{Children: []ast.Query{ast.NewAtom("R", c("a")), ast.NewAtom("S", c("b"))}}
	_, stats, err := EvalWithStats(q, s)
	if err != nil {
		t.Fatalf("EvalWithStats() error = %v", err)
	}
	if stats.GroundLookups() != 2 {
		t.Errorf("GroundLookups() = %d, want 2", stats.GroundLookups())
	}
	if stats.RuleFirings("R3") != 1 {
		t.Errorf("RuleFirings(R3) = %d, want 1", stats.RuleFirings("R3"))
	}
}
