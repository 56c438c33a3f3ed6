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
	"fmt"
	"sort"
	"sync"

	"go.uber.org/atomic"
)

// Stats accumulates counters over the course of a single Eval call: how
// many ground lookups were made, how many times each rule fired, and how
// many inclusion-exclusion subsets were expanded. Safe for concurrent
// use by the goroutines WithConcurrency spawns.
type Stats struct {
	groundLookups *atomic.Int64
	ieExpansions  *atomic.Int64
	mu            sync.Mutex
	firingsByRule map[string]*atomic.Int64
}

// NewStats returns a zeroed Stats block.
func NewStats() *Stats {
	return &Stats{
		groundLookups: atomic.NewInt64(0),
		ieExpansions:  atomic.NewInt64(0),
		firingsByRule: make(map[string]*atomic.Int64),
	}
}

func (s *Stats) ruleFirings(rule string) *atomic.Int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.firingsByRule[rule]
	if !ok {
		c = atomic.NewInt64(0)
		s.firingsByRule[rule] = c
	}
	return c
}

// GroundLookups returns the number of R1 ground-atom store lookups made.
func (s *Stats) GroundLookups() int64 { return s.groundLookups.Load() }

// InclusionExclusionExpansions returns the number of non-empty subsets
// R6 evaluated across all inclusion-exclusion applications.
func (s *Stats) InclusionExclusionExpansions() int64 { return s.ieExpansions.Load() }

// RuleFirings returns the number of times the named rule (e.g. "R1",
// "R5") fired, or 0 if it never did.
func (s *Stats) RuleFirings(rule string) int64 {
	s.mu.Lock()
	c, ok := s.firingsByRule[rule]
	s.mu.Unlock()
	if !ok {
		return 0
	}
	return c.Load()
}

// String renders a human-readable summary, used by cmd/tipd's -stats flag.
func (s *Stats) String() string {
	s.mu.Lock()
	rules := make([]string, 0, len(s.firingsByRule))
	for r := range s.firingsByRule {
		rules = append(rules, r)
	}
	s.mu.Unlock()
	sort.Strings(rules)
	out := fmt.Sprintf("ground lookups: %d, inclusion-exclusion expansions: %d", s.GroundLookups(), s.InclusionExclusionExpansions())
	for _, r := range rules {
		out += fmt.Sprintf(", %s: %d", r, s.RuleFirings(r))
	}
	return out
}
