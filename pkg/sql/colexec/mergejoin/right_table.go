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
	"bytes"
	"context"
	"fmt"

	"github.com/axiomhq/hyperloglog"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/matrixorigin/mergejoin/pkg/common/moerr"
	"github.com/matrixorigin/mergejoin/pkg/container/batch"
	"github.com/matrixorigin/mergejoin/pkg/container/types"
	"github.com/matrixorigin/mergejoin/pkg/fileservice"
	"github.com/matrixorigin/mergejoin/pkg/logutil/logutil2"
	"github.com/matrixorigin/mergejoin/pkg/sort"
)

// blockRef locates a spilled right batch: a segment of the run at index
// run of the run table.
type blockRef struct {
	run     int
	segment int
}

// rightTable accumulates the right relation and serves it, sorted, to
// probes. It is not thread safe, MergeJoin guards it.
type rightTable struct {
	attrs       []string
	typs        []types.Type
	keys        []sort.Key
	limits      SizeLimits
	rowsInBlock int
	storage     fileservice.TempStorage

	// build phase. buffered holds the batches not yet spilled, each
	// sorted, bufferedRows and bufferedBytes count them.
	buffered      []*batch.Batch
	bufferedRows  int64
	bufferedBytes int64
	lsm           *MiniLSM
	spilled       bool

	// true totals of every accepted batch
	rowCount  int64
	byteCount int64
	sketch    *hyperloglog.Sketch

	// probe phase
	finalized bool
	blocks    []*batch.Batch
	runs      []sortedRun
	refs      []blockRef
	index     *summaryIndex
	cache     *BlockCache
}

func newRightTable(
	attrs []string,
	typs []types.Type,
	keys []sort.Key,
	limits SizeLimits,
	rowsInBlock int,
	fanIn int,
	cacheCapacity int64,
	storage fileservice.TempStorage,
) *rightTable {
	t := &rightTable{
		attrs:       attrs,
		typs:        typs,
		keys:        keys,
		limits:      limits,
		rowsInBlock: rowsInBlock,
		storage:     storage,
		sketch:      hyperloglog.New(),
		index:       newSummaryIndex(orderOf(keys)),
		cache:       NewBlockCache(cacheCapacity),
	}
	if storage != nil {
		t.lsm = NewMiniLSM(storage, attrs, typs, keys, rowsInBlock, fanIn)
	}
	return t
}

func (t *rightTable) checkSchema(ctx context.Context, bat *batch.Batch) error {
	if bat.VectorCount() != len(t.typs) {
		return moerr.NewInvalidInput(ctx, "right batch has %d columns, expect %d", bat.VectorCount(), len(t.typs))
	}
	for i, vec := range bat.Vecs {
		if !vec.GetType().Eq(t.typs[i]) {
			return moerr.NewInvalidInput(ctx, "right column %d is %s, expect %s", i, vec.GetType(), t.typs[i])
		}
		if vec.Length() != bat.RowCount() {
			return moerr.NewInvalidInput(ctx, "right column %d has %d rows, batch has %d", i, vec.Length(), bat.RowCount())
		}
	}
	return nil
}

// addBatch accepts bat into the relation. With enforceLimits set and the
// limits exceeded it fails with ErrLimitExceeded when overflow is fatal,
// spills when temp storage is available, and otherwise returns false
// without adding bat.
func (t *rightTable) addBatch(ctx context.Context, bat *batch.Batch, enforceLimits bool) (bool, error) {
	if t.finalized {
		return false, moerr.NewInvalidState(ctx, "right table is already probed")
	}
	if err := t.checkSchema(ctx, bat); err != nil {
		return false, err
	}
	if bat.IsEmpty() {
		return true, nil
	}

	rows, size := int64(bat.RowCount()), int64(bat.Size())
	exceeded := enforceLimits &&
		t.limits.exceeded(t.bufferedRows+rows, t.bufferedBytes+size)
	if exceeded {
		if t.limits.OverflowIsFatal {
			return false, moerr.NewLimitExceeded(ctx,
				"right table of join: %d rows, %s, limits: %d rows, %d bytes",
				t.bufferedRows+rows, humanize.IBytes(uint64(t.bufferedBytes+size)),
				t.limits.MaxRows, t.limits.MaxBytes)
		}
		if t.lsm == nil {
			return false, nil
		}
	}

	sorted := bat.Dup()
	sort.SortBatch(sorted, t.keys)
	t.buffered = append(t.buffered, sorted)
	t.bufferedRows += rows
	t.bufferedBytes += size
	t.rowCount += rows
	t.byteCount += size
	t.countKeys(sorted)

	if exceeded {
		if !t.spilled {
			logutil2.Info(ctx, "mergejoin: right table exceeds limits, spill to temp storage",
				zap.String("storage", t.storage.Name()),
				zap.Int64("rows", t.rowCount),
				zap.String("size", humanize.IBytes(uint64(t.byteCount))),
			)
			t.spilled = true
		}
		if err := t.flush(ctx); err != nil {
			return false, err
		}
	}
	return true, nil
}

// flush writes the buffered batches as one sorted run.
func (t *rightTable) flush(ctx context.Context) error {
	if len(t.buffered) == 0 {
		return nil
	}
	if err := t.lsm.Insert(ctx, t.buffered); err != nil {
		return err
	}
	t.buffered = nil
	t.bufferedRows = 0
	t.bufferedBytes = 0
	return nil
}

func (t *rightTable) countKeys(bat *batch.Batch) {
	var buf bytes.Buffer
	for i := 0; i < bat.RowCount(); i++ {
		buf.Reset()
		for _, v := range tupleOf(bat, t.keys, i) {
			fmt.Fprintf(&buf, "%v\x00", v)
		}
		t.sketch.Insert(buf.Bytes())
	}
}

// finalize turns the accumulated batches into one globally sorted
// sequence of blocks with rowsInBlock rows and builds the summary index.
func (t *rightTable) finalize(ctx context.Context) error {
	if t.finalized {
		return nil
	}
	if t.spilled {
		if err := t.flush(ctx); err != nil {
			return err
		}
		run, err := t.lsm.Merge(ctx)
		if err != nil {
			return err
		}
		t.runs = []sortedRun{run}
		for i, summary := range run.summaries {
			t.refs = append(t.refs, blockRef{run: 0, segment: i})
			t.index.add(summary)
		}
		logutil2.Info(ctx, "mergejoin: spilled right table ready",
			zap.String("run", run.handle.String()),
			zap.Int("blocks", len(t.refs)),
			zap.Int64("rows", run.rows),
		)
	} else {
		sources := make([]batchSource, len(t.buffered))
		for i, bat := range t.buffered {
			sources[i] = &sliceSource{bats: []*batch.Batch{bat}}
		}
		err := mergeSorted(ctx, sources, t.attrs, t.typs, t.keys, t.rowsInBlock,
			func(bat *batch.Batch) error {
				t.blocks = append(t.blocks, bat)
				t.index.add(summarize(bat, t.keys))
				return nil
			})
		if err != nil {
			return err
		}
		t.buffered = nil
		t.bufferedRows = 0
		t.bufferedBytes = 0
	}
	t.finalized = true
	return nil
}

func (t *rightTable) blockCount() int {
	return t.index.len()
}

// block returns right batch idx, from memory or through the cache.
func (t *rightTable) block(ctx context.Context, idx int) (*batch.Batch, error) {
	if !t.spilled {
		return t.blocks[idx], nil
	}
	return t.cache.Get(ctx, idx, func(ctx context.Context) (*batch.Batch, error) {
		ref := t.refs[idx]
		run := t.runs[ref.run]
		bat, err := t.storage.ReadSegment(ctx, run.handle, ref.segment)
		if err != nil {
			return nil, moerr.NewSpillIO(ctx, fmt.Sprintf("read block %d", idx), err)
		}
		return bat, nil
	})
}

func (t *rightTable) runCount() int {
	if t.lsm == nil {
		return 0
	}
	return t.lsm.RunCount()
}

func (t *rightTable) close(ctx context.Context) error {
	t.cache.Reset(ctx)
	if t.lsm == nil {
		return nil
	}
	return t.lsm.Close(ctx)
}
