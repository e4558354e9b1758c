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
	"context"

	"github.com/matrixorigin/mergejoin/pkg/common/moerr"
	"github.com/matrixorigin/mergejoin/pkg/container/batch"
	"github.com/matrixorigin/mergejoin/pkg/container/vector"
)

const (
	leftSlot = iota
	rightSlot
)

// probe is the state of one JoinBatch call. The right cursor rc is only
// valid while rb < n.
type probe struct {
	m     *MergeJoin
	table *rightTable
	left  *batch.Batch
	out   *batch.Batch
	limit int

	kc      *keyComparer
	lc      *cursor
	rc      *cursor
	rb      int
	n       int
	leftMax keyTuple
}

func (m *MergeJoin) newProbe(left *batch.Batch) *probe {
	desc := make([]bool, len(m.leftKeys))
	for i, k := range m.leftKeys {
		desc[i] = k.Desc
	}
	p := &probe{
		m:     m,
		table: m.table,
		left:  left,
		limit: m.maxJoinedRows,
		kc:    newKeyComparer(m.keyTypes, desc, 2),
		n:     m.table.blockCount(),
	}
	p.lc = newCursor(p.kc, leftSlot, left, m.leftKeys)

	attrs := make([]string, 0, left.VectorCount()+len(m.payload))
	for i := 0; i < left.VectorCount(); i++ {
		if i < len(left.Attrs) {
			attrs = append(attrs, left.Attrs[i])
		} else {
			attrs = append(attrs, "")
		}
	}
	for _, pos := range m.payload {
		attrs = append(attrs, m.rightAttrs[pos])
	}
	p.out = batch.New(attrs)
	for i, vec := range left.Vecs {
		p.out.Vecs[i] = vector.NewVec(*vec.GetType())
	}
	for i, pos := range m.payload {
		p.out.Vecs[left.VectorCount()+i] = vector.NewVec(m.rightTypes[pos])
	}
	if !left.IsEmpty() {
		p.leftMax = p.leftKey(left.RowCount() - 1)
	}
	return p
}

func (p *probe) result(tok *Token, err error) (*batch.Batch, *Token, error) {
	if err != nil {
		return nil, nil, err
	}
	return p.out, tok, nil
}

func (p *probe) leftKey(l int) keyTuple {
	return tupleOf(p.left, p.m.leftKeys, l)
}

func (p *probe) full() bool {
	return p.limit > 0 && p.out.RowCount() >= p.limit
}

func (p *probe) emitLeftColumns(l int) error {
	for i, vec := range p.left.Vecs {
		if err := p.out.Vecs[i].UnionOne(vec, int64(l)); err != nil {
			return err
		}
	}
	return nil
}

func (p *probe) emitLeft(l int) error {
	if err := p.emitLeftColumns(l); err != nil {
		return err
	}
	p.out.SetRowCount(p.out.RowCount() + 1)
	return nil
}

func (p *probe) emitPair(l int, right *batch.Batch, r int) error {
	if err := p.emitLeftColumns(l); err != nil {
		return err
	}
	offset := p.left.VectorCount()
	for i, pos := range p.m.payload {
		if err := p.out.Vecs[offset+i].UnionOne(right.Vecs[pos], int64(r)); err != nil {
			return err
		}
	}
	p.out.SetRowCount(p.out.RowCount() + 1)
	return nil
}

func (p *probe) emitUnmatched(l int) error {
	if err := p.emitLeftColumns(l); err != nil {
		return err
	}
	offset := p.left.VectorCount()
	for i := range p.m.payload {
		if err := vector.UnionNull(p.out.Vecs[offset+i]); err != nil {
			return err
		}
	}
	p.out.SetRowCount(p.out.RowCount() + 1)
	return nil
}

// setRight positions the right cursor at row pos of batch idx.
func (p *probe) setRight(ctx context.Context, idx int, pos int) error {
	p.rb = idx
	if idx >= p.n {
		p.rb = p.n
		return nil
	}
	bat, err := p.table.block(ctx, idx)
	if err != nil {
		return err
	}
	if p.rc == nil {
		p.rc = newCursor(p.kc, rightSlot, bat, p.m.rightKeys)
	} else {
		p.rc.reset(bat, p.m.rightKeys)
	}
	p.rc.pos = pos
	return nil
}

// enterRight moves to right batch idx, skipping the batches that can not
// match the current left row. The right side is done when every key left
// is above the max left key.
func (p *probe) enterRight(ctx context.Context, idx int) error {
	if p.m.skipNotIntersected && idx < p.n && !p.lc.atEnd() {
		if p.table.index.above(idx, p.leftMax) {
			idx = p.n
		} else if key := p.leftKey(p.lc.pos); p.table.index.below(idx, key) {
			idx = p.table.index.seek(key)
		}
	}
	return p.setRight(ctx, idx, 0)
}

// token marks the current state, the right cursor is normalized to the
// start of the next batch when it is at the end of one.
func (p *probe) token(l int) *Token {
	if p.rb >= p.n {
		return NewToken(l, 0, p.n)
	}
	if p.rc.atEnd() {
		if p.rb+1 >= p.n {
			return NewToken(l, 0, p.n)
		}
		return NewToken(l, 0, p.rb+1)
	}
	return NewToken(l, p.rc.pos, p.rb)
}

// pairToken marks the k-th right row of r for left row l.
func pairToken(l int, r rightRange, k int) *Token {
	seg, row := r.at(k)
	return NewToken(l, row, seg.batch)
}

// collectRightRange collects the right rows equal to left row l starting
// at the right cursor. The range may continue over the following right
// batches, the cursor is left after its end.
func (p *probe) collectRightRange(ctx context.Context, l int) (rightRange, error) {
	var r rightRange
	var key keyTuple
	for {
		start := p.rc.pos
		for !p.rc.atEnd() && p.kc.compare(rightSlot, p.rc.pos, leftSlot, l) == 0 {
			p.rc.next()
		}
		r = append(r, rangeSegment{batch: p.rb, bat: p.rc.bat, start: start, end: p.rc.pos})
		if !p.rc.atEnd() || p.rb+1 >= p.n {
			return r, nil
		}
		if key == nil {
			key = p.leftKey(l)
		}
		if !p.table.index.startsWith(p.rb+1, key) {
			return r, nil
		}
		if err := p.setRight(ctx, p.rb+1, 0); err != nil {
			return nil, err
		}
	}
}

// resume restores the state of tok. When tok stopped inside the cross
// product of a left row, that row is finished first.
func (p *probe) resume(ctx context.Context, tok *Token) (*Token, error) {
	l, rp, rb := tok.LeftPos(), tok.RightPos(), tok.RightBatch()
	if l < 0 || l >= p.left.RowCount() {
		return nil, moerr.NewMalformedContinuation(ctx, "%s, left batch has %d rows", tok, p.left.RowCount())
	}
	if rb < 0 || rb > p.n || rp < 0 || (rb == p.n && rp != 0) {
		return nil, moerr.NewMalformedContinuation(ctx, "%s, right relation has %d batches", tok, p.n)
	}
	p.lc.pos = l
	if err := p.setRight(ctx, rb, rp); err != nil {
		return nil, err
	}
	if rb == p.n {
		return nil, nil
	}
	if rp >= p.rc.rows {
		return nil, moerr.NewMalformedContinuation(ctx, "%s, right batch %d has %d rows", tok, rb, p.rc.rows)
	}

	if p.lc.keyHasNull() || !p.previousRightEquals(l) {
		return nil, nil
	}
	r, err := p.collectRightRange(ctx, l)
	if err != nil {
		return nil, err
	}
	k, err := p.multiplicity().join(p, l, r, 0)
	if err != nil {
		return nil, err
	}
	if k >= 0 {
		return pairToken(l, r, k), nil
	}
	p.lc.next()
	if p.lc.atEnd() || p.lc.keyHasNull() || p.kc.compare(leftSlot, l, leftSlot, p.lc.pos) != 0 {
		return nil, nil
	}
	// the next left row joins the whole range again
	return nil, p.seekRangeStart(ctx, l)
}

func (p *probe) multiplicity() joinMultiplicity {
	return p.m.multiplicity
}

// previousRightEquals reports whether the right row before the cursor
// equals left row l, that is the cursor is inside an equal range.
func (p *probe) previousRightEquals(l int) bool {
	if p.rc.pos > 0 {
		return p.kc.compare(rightSlot, p.rc.pos-1, leftSlot, l) == 0
	}
	if p.rb == 0 {
		return false
	}
	summary := p.table.index.summaries[p.rb-1]
	return p.table.index.order.compare(summary.Max, p.leftKey(l)) == 0
}

// seekRangeStart moves the right cursor to the first right row not below
// left row l.
func (p *probe) seekRangeStart(ctx context.Context, l int) error {
	if err := p.setRight(ctx, p.table.index.seek(p.leftKey(l)), 0); err != nil {
		return err
	}
	for p.rb < p.n && !p.rc.atEnd() && p.kc.compare(rightSlot, p.rc.pos, leftSlot, l) < 0 {
		p.rc.next()
	}
	return nil
}

// run merges the left rows from the left cursor with the right relation
// from the right cursor.
func (p *probe) run(ctx context.Context) (*Token, error) {
	for !p.lc.atEnd() {
		l := p.lc.pos
		if p.rb >= p.n || p.lc.keyHasNull() {
			if p.rb >= p.n && !p.m.unmatched.keepsUnmatched() {
				break
			}
			full, err := p.m.unmatched.unmatched(p, l)
			if err != nil {
				return nil, err
			}
			if full {
				return p.token(l), nil
			}
			p.lc.next()
			continue
		}
		if p.rc.atEnd() {
			if err := p.enterRight(ctx, p.rb+1); err != nil {
				return nil, err
			}
			continue
		}

		switch c := p.lc.compareWith(p.rc); {
		case c < 0:
			full, err := p.m.unmatched.unmatched(p, l)
			if err != nil {
				return nil, err
			}
			if full {
				return p.token(l), nil
			}
			p.lc.next()
		case c > 0:
			p.rc.next()
		default:
			r, err := p.collectRightRange(ctx, l)
			if err != nil {
				return nil, err
			}
			lr := p.lc.findEqualRange()
			for i := lr.start; i < lr.end; i++ {
				k, err := p.multiplicity().join(p, i, r, 0)
				if err != nil {
					return nil, err
				}
				if k >= 0 {
					return pairToken(i, r, k), nil
				}
			}
		}
	}
	return nil, nil
}
