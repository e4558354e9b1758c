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
	"github.com/matrixorigin/mergejoin/pkg/compare"
	"github.com/matrixorigin/mergejoin/pkg/container/batch"
	"github.com/matrixorigin/mergejoin/pkg/container/types"
	"github.com/matrixorigin/mergejoin/pkg/sort"
)

// keyComparer compares key tuples of the batches bound to its slots.
// Each slot has its own key positions, so left and right batches can be
// compared although their keys sit at different columns.
type keyComparer struct {
	cmps []compare.Compare
	keys [][]sort.Key
}

func newKeyComparer(typs []types.Type, desc []bool, slots int) *keyComparer {
	kc := &keyComparer{
		cmps: make([]compare.Compare, len(typs)),
		keys: make([][]sort.Key, slots),
	}
	for i, typ := range typs {
		kc.cmps[i] = compare.New(typ.Oid, desc[i])
	}
	return kc
}

func (kc *keyComparer) set(slot int, bat *batch.Batch, keys []sort.Key) {
	kc.keys[slot] = keys
	for i, k := range keys {
		kc.cmps[i].Set(slot, bat.GetVector(k.Pos))
	}
}

func (kc *keyComparer) compare(slotA int, rowA int, slotB int, rowB int) int {
	for _, c := range kc.cmps {
		if r := c.Compare(slotA, slotB, int64(rowA), int64(rowB)); r != 0 {
			return r
		}
	}
	return 0
}

// equalRange is the half open interval [start, end) of rows with the same key.
type equalRange struct {
	start int
	end   int
}

func (r equalRange) len() int {
	return r.end - r.start
}

// cursor is a position over one sorted batch.
type cursor struct {
	kc   *keyComparer
	slot int
	bat  *batch.Batch
	pos  int
	rows int
}

func newCursor(kc *keyComparer, slot int, bat *batch.Batch, keys []sort.Key) *cursor {
	c := &cursor{kc: kc, slot: slot}
	c.reset(bat, keys)
	return c
}

func (c *cursor) reset(bat *batch.Batch, keys []sort.Key) {
	c.bat = bat
	c.pos = 0
	c.rows = bat.RowCount()
	c.kc.set(c.slot, bat, keys)
}

func (c *cursor) atEnd() bool {
	return c.pos >= c.rows
}

func (c *cursor) next() {
	c.pos++
}

// compareWith compares the current rows of c and o.
func (c *cursor) compareWith(o *cursor) int {
	return c.kc.compare(c.slot, c.pos, o.slot, o.pos)
}

// keyHasNull reports whether any key column of the current row is null.
func (c *cursor) keyHasNull() bool {
	for _, k := range c.kc.keys[c.slot] {
		if c.bat.GetVector(k.Pos).IsNull(uint64(c.pos)) {
			return true
		}
	}
	return false
}

// findEqualRange advances c past the rows equal to the current one and
// returns them.
func (c *cursor) findEqualRange() equalRange {
	r := equalRange{start: c.pos, end: c.pos + 1}
	for r.end < c.rows && c.kc.compare(c.slot, r.start, c.slot, r.end) == 0 {
		r.end++
	}
	c.pos = r.end
	return r
}
