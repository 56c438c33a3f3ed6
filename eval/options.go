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

// Option configures an evaluator. The zero-value configuration (no
// options) is a pure, single-threaded, stack-recursive evaluation, which
// is always a correct result; options only change performance.
type Option func(*evaluator)

// WithConcurrency allows the evaluator to fan independent R4 groups and
// R5 domain enumerations out across up to n goroutines via
// golang.org/x/sync/errgroup. n <= 1 is equivalent to not passing this
// option. Parallelism never changes the result: subproblems under R4 are
// independent by construction and R5's per-constant terms are combined
// with a commutative product.
func WithConcurrency(n int) Option {
	return func(e *evaluator) {
		if n > 1 {
			e.concurrency = n
		}
	}
}

// WithMaxDisjuncts overrides the default ceiling (20) on the number of
// distinct disjuncts R6 will expand via inclusion-exclusion before
// giving up with ErrIntractable. Raising it trades worst-case exponential
// work for the ability to evaluate larger correlated disjunctions exactly.
func WithMaxDisjuncts(n int) Option {
	return func(e *evaluator) {
		if n > 0 {
			e.maxDisjuncts = n
		}
	}
}
