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

package sort

import (
	"golang.org/x/exp/slices"

	"github.com/matrixorigin/mergejoin/pkg/compare"
	"github.com/matrixorigin/mergejoin/pkg/container/batch"
)

// Key is one column of a lexicographic sort order.
type Key struct {
	Pos  int32
	Desc bool
}

func newComparers(bat *batch.Batch, keys []Key) []compare.Compare {
	cmps := make([]compare.Compare, len(keys))
	for i, k := range keys {
		vec := bat.GetVector(k.Pos)
		cmps[i] = compare.New(vec.GetType().Oid, k.Desc)
		cmps[i].Set(0, vec)
	}
	return cmps
}

func compareRows(cmps []compare.Compare, i, j int64) int {
	for _, c := range cmps {
		if r := c.Compare(0, 0, i, j); r != 0 {
			return r
		}
	}
	return 0
}

// Sels returns the row order of bat by keys. Equal rows keep their
// original relative order.
func Sels(bat *batch.Batch, keys []Key) []int64 {
	sels := make([]int64, bat.RowCount())
	for i := range sels {
		sels[i] = int64(i)
	}
	cmps := newComparers(bat, keys)
	slices.SortStableFunc(sels, func(a, b int64) bool {
		return compareRows(cmps, a, b) < 0
	})
	return sels
}

// IsSorted reports whether bat is already ordered by keys.
func IsSorted(bat *batch.Batch, keys []Key) bool {
	cmps := newComparers(bat, keys)
	for i := int64(1); i < int64(bat.RowCount()); i++ {
		if compareRows(cmps, i-1, i) > 0 {
			return false
		}
	}
	return true
}

// SortBatch stably reorders bat by keys in place.
func SortBatch(bat *batch.Batch, keys []Key) {
	if bat.RowCount() < 2 || IsSorted(bat, keys) {
		return
	}
	bat.Shuffle(Sels(bat, keys))
}
