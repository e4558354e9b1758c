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
	"github.com/matrixorigin/mergejoin/pkg/container/batch"
)

// rangeSegment is the part of a right equal range inside one right batch.
type rangeSegment struct {
	batch int
	bat   *batch.Batch
	start int
	end   int
}

// rightRange is an equal range of the right relation. It may span
// several right batches.
type rightRange []rangeSegment

func (r rightRange) len() int {
	n := 0
	for _, seg := range r {
		n += seg.end - seg.start
	}
	return n
}

// at returns the segment and row of the k-th row of the range.
func (r rightRange) at(k int) (rangeSegment, int) {
	for _, seg := range r {
		if n := seg.end - seg.start; k < n {
			return seg, seg.start + k
		} else {
			k -= n
		}
	}
	panic("right range index out of bounds")
}

// joinMultiplicity decides what one left row produces against the right
// equal range it matches.
type joinMultiplicity interface {
	// outputsRight reports whether the right payload is part of the output
	outputsRight() bool
	// join outputs left row l paired with rows of r starting at the from-th.
	// When the output is full it returns the index to resume from,
	// otherwise -1.
	join(p *probe, l int, r rightRange, from int) (int, error)
}

// joinKind decides what a left row without a match produces.
type joinKind interface {
	// unmatched outputs left row l, it returns true when the output is
	// full and l is left for the next call.
	unmatched(p *probe, l int) (bool, error)
	keepsUnmatched() bool
}

func newStrategies(kind Kind, strictness Strictness) (joinMultiplicity, joinKind) {
	var m joinMultiplicity
	switch strictness {
	case Any:
		m = anyJoin{}
	case Semi:
		// an existence test never outputs unmatched rows
		return semiJoin{}, innerKind{}
	default:
		m = allJoin{}
	}
	if kind == Left {
		return m, leftKind{}
	}
	return m, innerKind{}
}

type allJoin struct{}

func (allJoin) outputsRight() bool {
	return true
}

func (allJoin) join(p *probe, l int, r rightRange, from int) (int, error) {
	n := r.len()
	for k := from; k < n; k++ {
		if p.full() {
			return k, nil
		}
		seg, row := r.at(k)
		if err := p.emitPair(l, seg.bat, row); err != nil {
			return -1, err
		}
	}
	return -1, nil
}

type anyJoin struct{}

func (anyJoin) outputsRight() bool {
	return true
}

func (anyJoin) join(p *probe, l int, r rightRange, from int) (int, error) {
	if from > 0 {
		return -1, nil
	}
	if p.full() {
		return 0, nil
	}
	return -1, p.emitPair(l, r[0].bat, r[0].start)
}

type semiJoin struct{}

func (semiJoin) outputsRight() bool {
	return false
}

func (semiJoin) join(p *probe, l int, r rightRange, from int) (int, error) {
	if from > 0 {
		return -1, nil
	}
	if p.full() {
		return 0, nil
	}
	return -1, p.emitLeft(l)
}

type innerKind struct{}

func (innerKind) unmatched(*probe, int) (bool, error) {
	return false, nil
}

func (innerKind) keepsUnmatched() bool {
	return false
}

type leftKind struct{}

func (leftKind) unmatched(p *probe, l int) (bool, error) {
	if p.full() {
		return true, nil
	}
	return false, p.emitUnmatched(l)
}

func (leftKind) keepsUnmatched() bool {
	return true
}
