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
	"sync"

	"go.uber.org/zap"

	"github.com/matrixorigin/mergejoin/pkg/common/moerr"
	"github.com/matrixorigin/mergejoin/pkg/container/batch"
	"github.com/matrixorigin/mergejoin/pkg/container/types"
	"github.com/matrixorigin/mergejoin/pkg/fileservice"
	"github.com/matrixorigin/mergejoin/pkg/logutil/logutil2"
	"github.com/matrixorigin/mergejoin/pkg/sort"
)

// MergeJoin joins sorted left batches against an accumulated right
// relation. AddBatch takes the write lock, probes share the read lock.
type MergeJoin struct {
	sync.RWMutex

	kind         Kind
	strictness   Strictness
	multiplicity joinMultiplicity
	unmatched    joinKind

	leftKeys  []sort.Key
	rightKeys []sort.Key
	keyTypes  []types.Type
	// payload are the right columns appended to the output
	payload []int32

	rightAttrs []string
	rightTypes []types.Type

	maxJoinedRows      int
	skipNotIntersected bool

	table   *rightTable
	totals  *batch.Batch
	counter *fileservice.Counter
	// err is the first build failure, the join is unusable after it
	err error
}

// New creates a merge join. storage may be nil, the right relation then
// never spills.
func New(ctx context.Context, arg Argument, storage fileservice.TempStorage) (*MergeJoin, error) {
	cfg := arg.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := checkArgument(ctx, arg); err != nil {
		return nil, err
	}

	m := &MergeJoin{
		kind:               arg.Kind,
		strictness:         arg.Strictness,
		leftKeys:           arg.LeftKeys,
		rightKeys:          arg.RightKeys,
		rightAttrs:         arg.RightAttrs,
		rightTypes:         arg.RightTypes,
		maxJoinedRows:      cfg.MaxJoinedBlockRows,
		skipNotIntersected: cfg.SkipNotIntersected,
		counter:            new(fileservice.Counter),
	}
	m.multiplicity, m.unmatched = newStrategies(arg.Kind, arg.Strictness)
	m.keyTypes = make([]types.Type, len(arg.RightKeys))
	isKey := make(map[int32]bool, len(arg.RightKeys))
	for i, k := range arg.RightKeys {
		m.keyTypes[i] = arg.RightTypes[k.Pos]
		isKey[k.Pos] = true
	}
	if m.multiplicity.outputsRight() {
		for i := range arg.RightTypes {
			if !isKey[int32(i)] {
				m.payload = append(m.payload, int32(i))
			}
		}
	}
	m.table = newRightTable(arg.RightAttrs, arg.RightTypes, arg.RightKeys, cfg.sizeLimits(),
		cfg.RowsInRightBlock, cfg.MaxFilesToMerge, cfg.cacheCapacity(), storage)

	logutil2.Debug(ctx, "mergejoin: new join",
		zap.String("kind", arg.Kind.String()),
		zap.String("strictness", arg.Strictness.String()),
		zap.Int("keys", len(arg.RightKeys)),
		zap.Bool("spillable", storage != nil),
	)
	return m, nil
}

func checkArgument(ctx context.Context, arg Argument) error {
	if arg.Kind != Inner && arg.Kind != Left {
		return moerr.NewInvalidInput(ctx, "unknown join kind %s", arg.Kind)
	}
	if arg.Strictness != All && arg.Strictness != Any && arg.Strictness != Semi {
		return moerr.NewInvalidInput(ctx, "unknown join strictness %s", arg.Strictness)
	}
	if len(arg.LeftKeys) == 0 || len(arg.LeftKeys) != len(arg.RightKeys) {
		return moerr.NewInvalidInput(ctx, "join keys do not match: %d left, %d right", len(arg.LeftKeys), len(arg.RightKeys))
	}
	if len(arg.RightAttrs) != len(arg.RightTypes) {
		return moerr.NewInvalidInput(ctx, "right relation has %d attributes and %d types", len(arg.RightAttrs), len(arg.RightTypes))
	}
	for i, k := range arg.RightKeys {
		if k.Pos < 0 || int(k.Pos) >= len(arg.RightTypes) {
			return moerr.NewInvalidInput(ctx, "right key %d references column %d", i, k.Pos)
		}
		if arg.LeftKeys[i].Pos < 0 {
			return moerr.NewInvalidInput(ctx, "left key %d references column %d", i, arg.LeftKeys[i].Pos)
		}
		if k.Desc != arg.LeftKeys[i].Desc {
			return moerr.NewInvalidInput(ctx, "key %d is sorted in different directions", i)
		}
	}
	return nil
}

// AddBatch adds a batch of the right relation, see rightTable.addBatch.
// A spill failure or an overflow makes the join unusable.
func (m *MergeJoin) AddBatch(ctx context.Context, bat *batch.Batch, enforceLimits bool) (bool, error) {
	m.Lock()
	defer m.Unlock()
	if m.err != nil {
		return false, m.err
	}
	ok, err := m.table.addBatch(fileservice.WithCounter(ctx, m.counter), bat, enforceLimits)
	if err != nil &&
		(moerr.IsMoErrCode(err, moerr.ErrLimitExceeded) || moerr.IsMoErrCode(err, moerr.ErrSpillIO)) {
		m.err = err
	}
	return ok, err
}

// prepareProbe finalizes the right relation on the first probe.
func (m *MergeJoin) prepareProbe(ctx context.Context) error {
	m.RLock()
	ready, err := m.table.finalized, m.err
	m.RUnlock()
	if err != nil {
		return err
	}
	if ready {
		return nil
	}

	m.Lock()
	defer m.Unlock()
	if m.err != nil {
		return m.err
	}
	if err := m.table.finalize(ctx); err != nil {
		m.err = err
		return err
	}
	return nil
}

// JoinBatch joins left against the right relation. left needs not be
// sorted, it is sorted by the left keys first and the positions of a
// token refer to the sorted rows. When the output reaches the max joined
// block rows JoinBatch returns a token, calling it again with the same
// left batch and the token continues the join exactly where it stopped.
// The token is nil when left is done.
func (m *MergeJoin) JoinBatch(ctx context.Context, left *batch.Batch, tok *Token) (*batch.Batch, *Token, error) {
	ctx = fileservice.WithCounter(ctx, m.counter)
	if err := m.prepareProbe(ctx); err != nil {
		return nil, nil, err
	}

	m.RLock()
	defer m.RUnlock()
	if err := m.checkLeft(ctx, left); err != nil {
		return nil, nil, err
	}
	if !sort.IsSorted(left, m.leftKeys) {
		left = left.Dup()
		sort.SortBatch(left, m.leftKeys)
	}

	p := m.newProbe(left)
	if left.IsEmpty() {
		if tok != nil {
			return nil, nil, moerr.NewMalformedContinuation(ctx, "%s on an empty batch", tok)
		}
		return p.out, nil, nil
	}
	if tok == nil {
		if err := p.enterRight(ctx, 0); err != nil {
			return nil, nil, err
		}
	} else {
		next, err := p.resume(ctx, tok)
		if err != nil || next != nil {
			return p.result(next, err)
		}
	}
	return p.result(p.run(ctx))
}

func (m *MergeJoin) checkLeft(ctx context.Context, left *batch.Batch) error {
	for i, k := range m.leftKeys {
		if int(k.Pos) >= left.VectorCount() {
			return moerr.NewInvalidInput(ctx, "left key %d references column %d of %d", i, k.Pos, left.VectorCount())
		}
		if typ := left.GetVector(k.Pos).GetType(); !typ.Eq(m.keyTypes[i]) {
			return moerr.NewInvalidInput(ctx, "left key %d is %s, right key is %s", i, typ, m.keyTypes[i])
		}
	}
	return nil
}

// SetTotals keeps the totals row of the right relation.
func (m *MergeJoin) SetTotals(bat *batch.Batch) {
	m.Lock()
	defer m.Unlock()
	m.totals = bat
}

func (m *MergeJoin) GetTotals() *batch.Batch {
	m.RLock()
	defer m.RUnlock()
	return m.totals
}

func (m *MergeJoin) HasTotals() bool {
	m.RLock()
	defer m.RUnlock()
	return m.totals != nil
}

// GetTotalRowCount returns the number of rows added to the right relation.
func (m *MergeJoin) GetTotalRowCount() int64 {
	m.RLock()
	defer m.RUnlock()
	return m.table.rowCount
}

// GetTotalByteCount returns the size of the rows added to the right relation.
func (m *MergeJoin) GetTotalByteCount() int64 {
	m.RLock()
	defer m.RUnlock()
	return m.table.byteCount
}

// Stats takes the write lock, estimating the distinct keys merges the
// sparse sketch in place.
func (m *MergeJoin) Stats() Stats {
	m.Lock()
	defer m.Unlock()
	return Stats{
		Rows:         m.table.rowCount,
		Bytes:        m.table.byteCount,
		Blocks:       m.table.blockCount(),
		Runs:         m.table.runCount(),
		Spilled:      m.table.spilled,
		CacheHits:    m.table.cache.Hits(),
		CacheMisses:  m.table.cache.Misses(),
		DistinctKeys: m.table.sketch.Estimate(),
		IO:           m.counter.Snapshot(),
	}
}

// Close releases the spilled runs. Tokens handed out before are invalid
// afterwards.
func (m *MergeJoin) Close(ctx context.Context) error {
	m.Lock()
	defer m.Unlock()
	return m.table.close(ctx)
}
