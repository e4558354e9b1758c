// Copyright 2021 Matrix Origin
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

package compare

import (
	"strings"

	"github.com/matrixorigin/mergejoin/pkg/container/nulls"
	"github.com/matrixorigin/mergejoin/pkg/container/types"
	"github.com/matrixorigin/mergejoin/pkg/container/vector"
	"golang.org/x/exp/constraints"
)

type compare[T types.FixedSizeT] struct {
	desc bool
	cmp  func(a, b T) int
	xs   [][]T
	ns   []*nulls.Nulls
	vs   []*vector.Vector
}

type strCompare struct {
	desc bool
	xs   [][]string
	ns   []*nulls.Nulls
	vs   []*vector.Vector
}

func genericCompare[T constraints.Ordered](a, b T) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

func boolCompare(a, b bool) int {
	if a == b {
		return 0
	}
	if !a {
		return -1
	}
	return 1
}

func newCompare[T types.FixedSizeT](cmp func(a, b T) int, desc bool) *compare[T] {
	return &compare[T]{
		desc: desc,
		cmp:  cmp,
		xs:   make([][]T, 2),
		ns:   make([]*nulls.Nulls, 2),
		vs:   make([]*vector.Vector, 2),
	}
}

func (c *compare[T]) Vector() *vector.Vector {
	return c.vs[0]
}

func (c *compare[T]) Set(idx int, vec *vector.Vector) {
	for idx >= len(c.vs) {
		c.xs = append(c.xs, nil)
		c.ns = append(c.ns, nil)
		c.vs = append(c.vs, nil)
	}
	c.vs[idx] = vec
	c.xs[idx] = vector.MustFixedCol[T](vec)
	c.ns[idx] = vec.GetNulls()
}

func (c *compare[T]) Compare(veci, vecj int, vi, vj int64) int {
	r, ok := compareNulls(c.ns[veci], c.ns[vecj], vi, vj)
	if !ok {
		r = c.cmp(c.xs[veci][vi], c.xs[vecj][vj])
	}
	if c.desc {
		return -r
	}
	return r
}

func newStrCompare(desc bool) *strCompare {
	return &strCompare{
		desc: desc,
		xs:   make([][]string, 2),
		ns:   make([]*nulls.Nulls, 2),
		vs:   make([]*vector.Vector, 2),
	}
}

func (c *strCompare) Vector() *vector.Vector {
	return c.vs[0]
}

func (c *strCompare) Set(idx int, vec *vector.Vector) {
	for idx >= len(c.vs) {
		c.xs = append(c.xs, nil)
		c.ns = append(c.ns, nil)
		c.vs = append(c.vs, nil)
	}
	c.vs[idx] = vec
	c.xs[idx] = vector.MustStrCol(vec)
	c.ns[idx] = vec.GetNulls()
}

func (c *strCompare) Compare(veci, vecj int, vi, vj int64) int {
	r, ok := compareNulls(c.ns[veci], c.ns[vecj], vi, vj)
	if !ok {
		r = strings.Compare(c.xs[veci][vi], c.xs[vecj][vj])
	}
	if c.desc {
		return -r
	}
	return r
}

// compareNulls orders the pair if at least one side is null.
func compareNulls(ni, nj *nulls.Nulls, vi, vj int64) (int, bool) {
	isNulli := ni.Contains(uint64(vi))
	isNullj := nj.Contains(uint64(vj))
	switch {
	case isNulli && isNullj:
		return 0, true
	case isNulli:
		return -1, true
	case isNullj:
		return 1, true
	}
	return 0, false
}
