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

// Package store provides the probability-table store: an associative
// lookup from (relation, ground tuple) to a Bernoulli probability, with
// arity enforcement and active-domain enumeration.
package store

import (
	"fmt"
	"strings"

	"bitbucket.org/creachadair/stringset"
	"go.uber.org/multierr"
)

// Probability is a real number in [0, 1].
type Probability = float64

// SchemaError reports that a ground tuple's arity contradicts the arity
// already recorded for its relation. It is a population-time error only;
// it never arises during evaluation.
type SchemaError struct {
	Relation  string
	WantArity int
	GotArity  int
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("store: relation %q has arity %d, got tuple of arity %d", e.Relation, e.WantArity, e.GotArity)
}

// Fact is a single (relation, tuple, probability) row, used by AddAll and
// by the cmd/tipd fact-file loader.
type Fact struct {
	Relation    string
	Tuple       []string
	Probability Probability
}

// Store maps (relation, ground tuple) to a probability. It enforces a
// single arity per relation. A Store is populated before evaluation begins
// and is read-only thereafter; no locking is provided or required.
type Store struct {
	arities       map[string]int
	probabilities map[string]Probability
	// positions[relation][i] is the active domain restricted to position i
	// of relation, maintained incrementally so ValuesAt returns a copy of
	// it without scanning the stored tuples.
	positions map[string][]stringset.Set
	domain    stringset.Set
}

// New constructs an empty Store.
func New() *Store {
	return &Store{
		arities:       make(map[string]int),
		probabilities: make(map[string]Probability),
		positions:     make(map[string][]stringset.Set),
		domain:        stringset.New(),
	}
}

func key(relation string, tuple []string) string {
	var sb strings.Builder
	sb.WriteString(relation)
	sb.WriteByte('/')
	for i, t := range tuple {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(t)
	}
	return sb.String()
}

// Add records relation(tuple) = p. It returns a *SchemaError, without
// modifying the store, if tuple's length contradicts relation's recorded
// arity.
func (s *Store) Add(relation string, tuple []string, p Probability) error {
	if want, ok := s.arities[relation]; ok {
		if want != len(tuple) {
			return &SchemaError{Relation: relation, WantArity: want, GotArity: len(tuple)}
		}
	} else {
		s.arities[relation] = len(tuple)
		s.positions[relation] = make([]stringset.Set, len(tuple))
		for i := range s.positions[relation] {
			s.positions[relation][i] = stringset.New()
		}
	}
	s.probabilities[key(relation, tuple)] = p
	for i, c := range tuple {
		s.positions[relation][i].Add(c)
		s.domain.Add(c)
	}
	return nil
}

// AddAll populates the store from a batch of facts, aggregating every
// SchemaError encountered via multierr instead of stopping at the first
// bad row, so that a malformed fact file reports all of its problems at
// once.
func (s *Store) AddAll(facts []Fact) error {
	var errs error
	for _, f := range facts {
		if err := s.Add(f.Relation, f.Tuple, f.Probability); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// Get returns the recorded probability of relation(tuple), or 0.0 if the
// tuple was never added — the closed-world assumption of a
// tuple-independent probabilistic database, not an error condition.
func (s *Store) Get(relation string, tuple []string) Probability {
	return s.probabilities[key(relation, tuple)]
}

// Arity reports the recorded arity of relation, and whether relation has
// any recorded facts at all.
func (s *Store) Arity(relation string) (int, bool) {
	a, ok := s.arities[relation]
	return a, ok
}

// Values returns the full active domain: every constant appearing in any
// stored tuple, across all relations and positions.
func (s *Store) Values() stringset.Set {
	return s.domain.Clone()
}

// ValuesAt returns the projection of position onto relation: the set of
// constants that appear at that position in some stored tuple of relation.
// Used to restrict domain enumeration in R5 to positions the separator
// variable actually occupies.
func (s *Store) ValuesAt(relation string, position int) stringset.Set {
	positions, ok := s.positions[relation]
	if !ok || position < 0 || position >= len(positions) {
		return stringset.New()
	}
	return positions[position].Clone()
}
