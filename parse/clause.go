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
	"strings"

	"github.com/kkty/tipd/ast"
)

// Clause parses the quantifier-list surface syntax "v1, v2 | R(v1, v2),
// S(z)": a comma-separated list of variables to existentially
// quantify, a "|", then a comma-separated conjunction of atoms. Atom
// terms not named in the quantifier list are treated as ground
// constants, same as Query. The desugared form is nested Exists nodes,
// innermost binding the last-listed variable, wrapping a Conjunction of
// the atoms.
func Clause(src string) (ast.Query, error) {
	bar := strings.Index(src, "|")
	if bar < 0 {
		return nil, errorf(src, "missing '|' separating quantifier list from atoms")
	}
	varPart := strings.TrimSpace(src[:bar])
	atomPart := strings.TrimSpace(src[bar+1:])
	if atomPart == "" {
		return nil, errorf(src, "empty atom list")
	}

	var names []string
	if varPart != "" {
		for _, v := range strings.Split(varPart, ",") {
			name := strings.TrimSpace(v)
			if name == "" {
				return nil, errorf(src, "empty variable name in quantifier list")
			}
			names = append(names, name)
		}
	}

	seen := make(map[string]bool, len(names))
	bound := make(map[string]ast.Variable, len(names))
	for _, name := range names {
		if seen[name] {
			return nil, errorf(src, "duplicate variable %q in quantifier list", name)
		}
		seen[name] = true
		bound[name] = ast.Variable{Symbol: name}
	}

	atomStrs, err := splitTopLevelCommas(atomPart)
	if err != nil {
		return nil, err
	}
	atoms := make([]ast.Query, len(atomStrs))
	for i, s := range atomStrs {
		op, children, err := splitCall(s)
		if err != nil {
			return nil, err
		}
		atom, err := parseAtom(s, op, children, bound)
		if err != nil {
			return nil, err
		}
		atoms[i] = atom
	}

	var body ast.Query = ast.NewConjunction(atoms...)
	for i := len(names) - 1; i >= 0; i-- {
		body = ast.Exists{Var: bound[names[i]], Inner: body}
	}
	return body, nil
}

// splitTopLevelCommas splits src on commas that are not nested inside
// parentheses, used to separate the atoms of a clause body.
func splitTopLevelCommas(src string) ([]string, error) {
	level := 0
	var parts []string
	var buf []rune
	for _, r := range src {
		switch r {
		case '(':
			level++
			buf = append(buf, r)
		case ')':
			level--
			if level < 0 {
				return nil, errorf(src, "unbalanced parentheses")
			}
			buf = append(buf, r)
		case ',':
			if level == 0 {
				parts = append(parts, strings.TrimSpace(string(buf)))
				buf = nil
				continue
			}
			buf = append(buf, r)
		default:
			buf = append(buf, r)
		}
	}
	if level != 0 {
		return nil, errorf(src, "unbalanced parentheses")
	}
	if len(buf) > 0 || len(parts) == 0 {
		parts = append(parts, strings.TrimSpace(string(buf)))
	}
	return parts, nil
}
