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

package analysis

import "github.com/kkty/tipd/ast"

// Decompose groups children into maximal classes such that any two
// subqueries placed in different classes are Independent. It is the
// generalization of R3's binary independence check to the n-ary
// decomposition rule R4. Order within a class, and the order of classes
// themselves, follows the first appearance of a member in children.
func Decompose(children []ast.Query) [][]ast.Query {
	uf := newDisjointSet(len(children))
	for i := 0; i < len(children); i++ {
		for j := i + 1; j < len(children); j++ {
			if !Independent(children[i], children[j]) {
				uf.union(i, j)
			}
		}
	}
	groupOf := make(map[int][]int)
	order := []int{}
	for i := range children {
		root := uf.find(i)
		if _, ok := groupOf[root]; !ok {
			order = append(order, root)
		}
		groupOf[root] = append(groupOf[root], i)
	}
	groups := make([][]ast.Query, 0, len(order))
	for _, root := range order {
		members := groupOf[root]
		group := make([]ast.Query, len(members))
		for k, idx := range members {
			group[k] = children[idx]
		}
		groups = append(groups, group)
	}
	return groups
}

// disjointSet is a union-find structure over the indices 0..n-1, used to
// partition query children into independence classes. Equivalent in shape
// to the teacher's unionfind package and to the original Python
// implementation's util.DisjointSet, specialized to plain integer indices
// since query children carry no natural hashable identity of their own.
type disjointSet struct {
	parent []int
	rank   []int
}

func newDisjointSet(n int) *disjointSet {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &disjointSet{parent: parent, rank: make([]int, n)}
}

func (d *disjointSet) find(x int) int {
	for d.parent[x] != x {
		d.parent[x] = d.parent[d.parent[x]]
		x = d.parent[x]
	}
	return x
}

func (d *disjointSet) union(x, y int) {
	rx, ry := d.find(x), d.find(y)
	if rx == ry {
		return
	}
	switch {
	case d.rank[rx] < d.rank[ry]:
		d.parent[rx] = ry
	case d.rank[rx] > d.rank[ry]:
		d.parent[ry] = rx
	default:
		d.parent[ry] = rx
		d.rank[rx]++
	}
}
