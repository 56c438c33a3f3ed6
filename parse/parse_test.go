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

package parse

import (
	"testing"

	"github.com/kkty/tipd/ast"
)

func TestQueryAtom(t *testing.T) {
	q, err := Query("R(a, b)")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if got, want := q.String(), "R(a,b)"; got != want {
		t.Errorf("Query().String() = %q, want %q", got, want)
	}
}

func TestQueryZeroArity(t *testing.T) {
	q, err := Query("baz()")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if got, want := q.String(), "baz()"; got != want {
		t.Errorf("Query().String() = %q, want %q", got, want)
	}
}

func TestQueryConnectivesNary(t *testing.T) {
	q, err := Query("and(R(a), S(b), T(c))")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if got, want := q.String(), "and(R(a),S(b),T(c))"; got != want {
		t.Errorf("Query().String() = %q, want %q", got, want)
	}
}

func TestQueryNegationAndQuantifiers(t *testing.T) {
	q, err := Query("exist(x, and(R(x), not(S(x, p))))")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if got, want := q.String(), "exist(x,and(R(x),not(S(x,p))))"; got != want {
		t.Errorf("Query().String() = %q, want %q", got, want)
	}
}

func TestQueryVariableVsConstantResolution(t *testing.T) {
	q, err := Query("exist(x, R(x, a))")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	// x is bound by exist and must resolve to a Variable term; a is not
	// bound anywhere and must resolve to a Constant term. Both render the
	// same in String() form, so the parse tree is inspected directly.
	if got, want := q.String(), "exist(x,R(x,a))"; got != want {
		t.Errorf("Query().String() = %q, want %q", got, want)
	}
	e, ok := q.(ast.Exists)
	if !ok {
		t.Fatalf("Query() = %T, want ast.Exists", q)
	}
	atom, ok := e.Inner.(ast.Atom)
	if !ok {
		t.Fatalf("Exists.Inner = %T, want ast.Atom", e.Inner)
	}
	if _, ok := atom.Args[0].(ast.Variable); !ok {
		t.Errorf("R(x, a) arg 0 = %T, want ast.Variable", atom.Args[0])
	}
	if _, ok := atom.Args[1].(ast.Constant); !ok {
		t.Errorf("R(x, a) arg 1 = %T, want ast.Constant", atom.Args[1])
	}
}

func TestQueryUnbalancedParens(t *testing.T) {
	if _, err := Query("R(a"); err == nil {
		t.Error("Query() with unbalanced parens: want error, got nil")
	}
}

func TestQueryWrongArityConnective(t *testing.T) {
	if _, err := Query("not(R(a), S(b))"); err == nil {
		t.Error("Query() with not() of two arguments: want error, got nil")
	}
}

func TestQueryRejectsShadowedVariable(t *testing.T) {
	if _, err := Query("exist(x, exist(x, R(x)))"); err == nil {
		t.Error("Query() with re-bound variable x: want error, got nil")
	}
}

func TestClauseDesugarsToNestedExists(t *testing.T) {
	q, err := Clause("v1, v2 | R(v1, v2), S(z)")
	if err != nil {
		t.Fatalf("Clause() error = %v", err)
	}
	want := "exist(v1,exist(v2,and(R(v1,v2),S(z))))"
	if got := q.String(); got != want {
		t.Errorf("Clause().String() = %q, want %q", got, want)
	}
}

func TestClauseWithNoQuantifiers(t *testing.T) {
	q, err := Clause(" | R(a)")
	if err != nil {
		t.Fatalf("Clause() error = %v", err)
	}
	if got, want := q.String(), "R(a)"; got != want {
		t.Errorf("Clause().String() = %q, want %q", got, want)
	}
}

func TestClauseRejectsDuplicateVariable(t *testing.T) {
	if _, err := Clause("v1, v1 | R(v1)"); err == nil {
		t.Error("Clause() with duplicate v1: want error, got nil")
	}
}

func TestClauseMissingBar(t *testing.T) {
	if _, err := Clause("R(a)"); err == nil {
		t.Error("Clause() without '|': want error, got nil")
	}
}
