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

package main

import (
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/kkty/tipd/store"
)

const prompt = "tipd> "

// loop reads one query per line from stdin and prints its probability,
// until the user sends EOF (Ctrl-D). A line starting with "?" is parsed
// with the clause syntax regardless of the -clause flag, so the two
// surface syntaxes can be mixed in one session.
func loop(s *store.Store, out io.Writer) error {
	rl, err := readline.New(prompt)
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		asClause := strings.HasPrefix(line, "?")
		if asClause {
			line = strings.TrimPrefix(line, "?")
		}
		runQuery(s, line, asClause, out)
	}
}
