// Copyright 2022 Matrix Origin
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

package mergejoin

import (
	"fmt"
	"strings"

	"github.com/google/btree"
	"golang.org/x/exp/constraints"

	"github.com/matrixorigin/mergejoin/pkg/container/batch"
	"github.com/matrixorigin/mergejoin/pkg/sort"
)

// keyTuple is the boxed key of one row, nil for a null column.
type keyTuple []any

func tupleOf(bat *batch.Batch, keys []sort.Key, row int) keyTuple {
	t := make(keyTuple, len(keys))
	for i, k := range keys {
		t[i] = bat.GetVector(k.Pos).GetAny(row)
	}
	return t
}

func (t keyTuple) String() string {
	var buf strings.Builder
	buf.WriteByte('(')
	for i, v := range t {
		if i > 0 {
			buf.WriteString(", ")
		}
		if v == nil {
			buf.WriteString("null")
		} else {
			fmt.Fprint(&buf, v)
		}
	}
	buf.WriteByte(')')
	return buf.String()
}

// tupleOrder orders key tuples the same way as the compare package: null
// first, then by value, negated for descending columns.
type tupleOrder []bool

func orderOf(keys []sort.Key) tupleOrder {
	o := make(tupleOrder, len(keys))
	for i, k := range keys {
		o[i] = k.Desc
	}
	return o
}

func (o tupleOrder) compare(a, b keyTuple) int {
	for i, desc := range o {
		r := compareValue(a[i], b[i])
		if desc {
			r = -r
		}
		if r != 0 {
			return r
		}
	}
	return 0
}

func compareValue(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	switch x := a.(type) {
	case bool:
		y := b.(bool)
		if x == y {
			return 0
		}
		if !x {
			return -1
		}
		return 1
	case int32:
		return ordered(x, b.(int32))
	case int64:
		return ordered(x, b.(int64))
	case uint64:
		return ordered(x, b.(uint64))
	case float64:
		return ordered(x, b.(float64))
	case string:
		return strings.Compare(x, b.(string))
	}
	panic(fmt.Sprintf("unexpect key type %T", a))
}

func ordered[T constraints.Ordered](a, b T) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// BatchKeySummary is the key range of one sorted right batch.
type BatchKeySummary struct {
	Min keyTuple
	Max keyTuple
}

func summarize(bat *batch.Batch, keys []sort.Key) BatchKeySummary {
	n := bat.RowCount()
	return BatchKeySummary{
		Min: tupleOf(bat, keys, 0),
		Max: tupleOf(bat, keys, n-1),
	}
}

type summaryItem struct {
	order tupleOrder
	max   keyTuple
	idx   int
}

func (a *summaryItem) Less(than btree.Item) bool {
	b := than.(*summaryItem)
	if r := a.order.compare(a.max, b.max); r != 0 {
		return r < 0
	}
	return a.idx < b.idx
}

// summaryIndex indexes the right batches by their max key. Batches are
// globally sorted, so the order of max keys is the order of batches.
type summaryIndex struct {
	order     tupleOrder
	summaries []BatchKeySummary
	tree      *btree.BTree
}

func newSummaryIndex(order tupleOrder) *summaryIndex {
	return &summaryIndex{
		order: order,
		tree:  btree.New(32),
	}
}

func (s *summaryIndex) add(summary BatchKeySummary) {
	s.tree.ReplaceOrInsert(&summaryItem{
		order: s.order,
		max:   summary.Max,
		idx:   len(s.summaries),
	})
	s.summaries = append(s.summaries, summary)
}

func (s *summaryIndex) len() int {
	return len(s.summaries)
}

// seek returns the first batch whose max key is not below key, len() when
// every batch is below.
func (s *summaryIndex) seek(key keyTuple) int {
	idx := len(s.summaries)
	pivot := &summaryItem{order: s.order, max: key, idx: -1}
	s.tree.AscendGreaterOrEqual(pivot, func(i btree.Item) bool {
		idx = i.(*summaryItem).idx
		return false
	})
	return idx
}

// below reports whether every key of batch idx is below key.
func (s *summaryIndex) below(idx int, key keyTuple) bool {
	return s.order.compare(s.summaries[idx].Max, key) < 0
}

// above reports whether every key of batch idx is above key.
func (s *summaryIndex) above(idx int, key keyTuple) bool {
	return s.order.compare(s.summaries[idx].Min, key) > 0
}

// startsWith reports whether the first key of batch idx equals key.
func (s *summaryIndex) startsWith(idx int, key keyTuple) bool {
	return s.order.compare(s.summaries[idx].Min, key) == 0
}
