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

// Binary tipd is a shell for the lifted inference evaluator: it loads a
// TOML fact file into a store.Store, then either answers a single query
// non-interactively or drops into a line-oriented interactive loop.
package main

import (
	"fmt"
	"io"
	"os"

	"flag"

	"github.com/BurntSushi/toml"
	log "github.com/golang/glog"

	"github.com/kkty/tipd/ast"
	"github.com/kkty/tipd/eval"
	"github.com/kkty/tipd/parse"
	"github.com/kkty/tipd/store"
)

var (
	facts        = flag.String("facts", "", "path to a TOML fact file")
	query        = flag.String("query", "", "if non-empty, evaluates a single query and exits with code 0 if its probability is positive")
	clause       = flag.Bool("clause", false, "parse -query using the quantifier-list clause syntax instead of prefix form")
	concurrency  = flag.Int("concurrency", 1, "if > 1, evaluate independent subqueries and domain enumerations concurrently")
	maxDisjuncts = flag.Int("max_disjuncts", 0, "if > 0, override the inclusion-exclusion disjunct ceiling")
	showStats    = flag.Bool("stats", false, "print evaluator rule-firing counters after each query")
)

type factFile struct {
	Fact []struct {
		Relation    string   `toml:"relation"`
		Tuple       []string `toml:"tuple"`
		Probability float64  `toml:"probability"`
	} `toml:"fact"`
}

func loadStore(path string) (*store.Store, error) {
	s := store.New()
	if path == "" {
		return s, nil
	}
	var ff factFile
	if _, err := toml.DecodeFile(path, &ff); err != nil {
		return nil, fmt.Errorf("decoding fact file %s: %w", path, err)
	}
	rows := make([]store.Fact, len(ff.Fact))
	for i, f := range ff.Fact {
		rows[i] = store.Fact{Relation: f.Relation, Tuple: f.Tuple, Probability: f.Probability}
	}
	if err := s.AddAll(rows); err != nil {
		return nil, fmt.Errorf("loading fact file %s: %w", path, err)
	}
	return s, nil
}

func evalOptions() []eval.Option {
	var opts []eval.Option
	if *concurrency > 1 {
		opts = append(opts, eval.WithConcurrency(*concurrency))
	}
	if *maxDisjuncts > 0 {
		opts = append(opts, eval.WithMaxDisjuncts(*maxDisjuncts))
	}
	return opts
}

func parseQuery(src string, asClause bool) (ast.Query, error) {
	if asClause {
		return parse.Clause(src)
	}
	return parse.Query(src)
}

// runQuery parses and evaluates src against s, writing the result (or the
// parse/evaluation error) to out. It reports whether the query's
// probability was positive, mirroring the #PASS/#FAIL convention of the
// teacher's -exec flag.
func runQuery(s *store.Store, src string, asClause bool, out io.Writer) bool {
	q, err := parseQuery(src, asClause)
	if err != nil {
		fmt.Fprintf(out, "parse error: %v\n", err)
		return false
	}
	p, stats, err := eval.EvalWithStats(q, s, evalOptions()...)
	if err != nil {
		fmt.Fprintf(out, "INTRACTABLE: %v\n", err)
		return false
	}
	fmt.Fprintf(out, "%v\n", p)
	if *showStats {
		fmt.Fprint(out, stats.String())
	}
	return p > 0
}

func main() {
	flag.Parse()

	s, err := loadStore(*facts)
	if err != nil {
		log.Exit(err)
	}

	if *query != "" {
		ok := runQuery(s, *query, *clause, os.Stdout)
		if ok {
			fmt.Fprintln(os.Stdout, "#PASS")
			os.Exit(0)
		}
		fmt.Fprintln(os.Stdout, "#FAIL")
		os.Exit(1)
	}

	if err := loop(s, os.Stdout); err != io.EOF {
		log.Exit(err)
	}
	os.Exit(0)
}
