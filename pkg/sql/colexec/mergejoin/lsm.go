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
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/matrixorigin/mergejoin/pkg/common/moerr"
	"github.com/matrixorigin/mergejoin/pkg/container/batch"
	"github.com/matrixorigin/mergejoin/pkg/container/types"
	"github.com/matrixorigin/mergejoin/pkg/fileservice"
	"github.com/matrixorigin/mergejoin/pkg/logutil"
	"github.com/matrixorigin/mergejoin/pkg/logutil/logutil2"
	"github.com/matrixorigin/mergejoin/pkg/sort"
)

const defaultMaxFilesToMerge = 16

// sortedRun is one run on the temp storage, totally sorted end to end.
// Every segment is summarized when written.
type sortedRun struct {
	handle    fileservice.RunHandle
	rows      int64
	bytes     int64
	summaries []BatchKeySummary
}

// MiniLSM keeps the spilled right rows as sorted runs. Every insert writes
// one run; whenever there are more than fanIn runs, the oldest fanIn runs
// are merged into one that takes their place at the head of the list, so
// run order stays insertion order.
type MiniLSM struct {
	storage     fileservice.TempStorage
	attrs       []string
	typs        []types.Type
	keys        []sort.Key
	rowsInBlock int
	fanIn       int
	runs        []sortedRun
}

func NewMiniLSM(
	storage fileservice.TempStorage,
	attrs []string,
	typs []types.Type,
	keys []sort.Key,
	rowsInBlock int,
	fanIn int,
) *MiniLSM {
	if fanIn < 2 {
		fanIn = defaultMaxFilesToMerge
	}
	return &MiniLSM{
		storage:     storage,
		attrs:       attrs,
		typs:        typs,
		keys:        keys,
		rowsInBlock: rowsInBlock,
		fanIn:       fanIn,
	}
}

func (l *MiniLSM) RunCount() int {
	return len(l.runs)
}

// Insert sorts bats as a whole and writes them as one new run.
func (l *MiniLSM) Insert(ctx context.Context, bats []*batch.Batch) error {
	all := batch.NewWithSchema(l.attrs, l.typs)
	for _, bat := range bats {
		if err := all.Append(bat); err != nil {
			return err
		}
	}
	if all.IsEmpty() {
		return nil
	}
	sort.SortBatch(all, l.keys)

	run, err := l.writeRun(ctx, func(emit func(*batch.Batch) error) error {
		for start := 0; start < all.RowCount(); start += l.rowsInBlock {
			end := start + l.rowsInBlock
			if end > all.RowCount() {
				end = all.RowCount()
			}
			if err := emit(all.Window(start, end)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	l.runs = append(l.runs, run)
	logutil2.Debug(ctx, "mergejoin: write sorted run",
		zap.String("run", run.handle.String()),
		zap.Int64("rows", run.rows),
		zap.String("size", humanize.IBytes(uint64(run.bytes))),
	)
	return l.Compact(ctx)
}

// Compact merges the oldest runs until at most fanIn runs are left.
func (l *MiniLSM) Compact(ctx context.Context) error {
	for len(l.runs) > l.fanIn {
		merged, err := l.mergeRuns(ctx, l.runs[:l.fanIn])
		if err != nil {
			return err
		}
		runs := make([]sortedRun, 0, len(l.runs)-l.fanIn+1)
		runs = append(runs, merged)
		l.runs = append(runs, l.runs[l.fanIn:]...)
	}
	return nil
}

// Merge merges every run into a single one and returns it.
func (l *MiniLSM) Merge(ctx context.Context) (sortedRun, error) {
	switch len(l.runs) {
	case 0:
		run, err := l.writeRun(ctx, func(func(*batch.Batch) error) error { return nil })
		if err != nil {
			return sortedRun{}, err
		}
		l.runs = []sortedRun{run}
	case 1:
	default:
		merged, err := l.mergeRuns(ctx, l.runs)
		if err != nil {
			return sortedRun{}, err
		}
		l.runs = []sortedRun{merged}
	}
	return l.runs[0], nil
}

func (l *MiniLSM) mergeRuns(ctx context.Context, runs []sortedRun) (sortedRun, error) {
	start := time.Now()
	sources := make([]batchSource, 0, len(runs))
	defer func() {
		for _, src := range sources {
			_ = src.(*runSource).reader.Close()
		}
	}()
	for _, run := range runs {
		r, err := l.storage.OpenForSequentialRead(ctx, run.handle)
		if err != nil {
			return sortedRun{}, moerr.NewSpillIO(ctx, "open run "+run.handle.String(), err)
		}
		sources = append(sources, &runSource{handle: run.handle, reader: r})
	}

	merged, err := l.writeRun(ctx, func(emit func(*batch.Batch) error) error {
		return mergeSorted(ctx, sources, l.attrs, l.typs, l.keys, l.rowsInBlock, emit)
	})
	if err != nil {
		return sortedRun{}, err
	}
	for _, run := range runs {
		if err := l.storage.RemoveRun(ctx, run.handle); err != nil {
			return sortedRun{}, moerr.NewSpillIO(ctx, "remove run "+run.handle.String(), err)
		}
	}
	logutil2.Info(ctx, "mergejoin: merge sorted runs",
		zap.Int("runs", len(runs)),
		zap.String("into", merged.handle.String()),
		zap.Int64("rows", merged.rows),
		zap.String("size", humanize.IBytes(uint64(merged.bytes))),
		logutil.Duration("cost", start),
	)
	return merged, nil
}

// writeRun creates a run and fills it with the sorted batches fill emits.
func (l *MiniLSM) writeRun(
	ctx context.Context,
	fill func(emit func(*batch.Batch) error) error,
) (run sortedRun, err error) {
	run.handle, err = l.storage.CreateRun(ctx)
	if err != nil {
		return run, moerr.NewSpillIO(ctx, "create run", err)
	}
	defer func() {
		if err != nil {
			_ = l.storage.RemoveRun(ctx, run.handle)
		}
	}()

	err = fill(func(bat *batch.Batch) error {
		if err := l.storage.AppendSorted(ctx, run.handle, bat); err != nil {
			return moerr.NewSpillIO(ctx, "append run "+run.handle.String(), err)
		}
		run.rows += int64(bat.RowCount())
		run.bytes += int64(bat.Size())
		run.summaries = append(run.summaries, summarize(bat, l.keys))
		return nil
	})
	if err != nil {
		return run, err
	}
	if err = l.storage.SealRun(ctx, run.handle); err != nil {
		return run, moerr.NewSpillIO(ctx, "seal run "+run.handle.String(), err)
	}
	return run, nil
}

// Close removes every run.
func (l *MiniLSM) Close(ctx context.Context) error {
	var err error
	for _, run := range l.runs {
		if e := l.storage.RemoveRun(ctx, run.handle); e != nil && err == nil {
			err = moerr.NewSpillIO(ctx, "remove run "+run.handle.String(), e)
		}
	}
	l.runs = nil
	return err
}

// batchSource yields sorted batches, io.EOF after the last one.
type batchSource interface {
	Next(ctx context.Context) (*batch.Batch, error)
}

type runSource struct {
	handle fileservice.RunHandle
	reader fileservice.RunReader
}

func (s *runSource) Next(ctx context.Context) (*batch.Batch, error) {
	bat, err := s.reader.Next(ctx)
	if err != nil && err != io.EOF {
		return nil, moerr.NewSpillIO(ctx, "read run "+s.handle.String(), err)
	}
	return bat, err
}

type sliceSource struct {
	bats []*batch.Batch
	pos  int
}

func (s *sliceSource) Next(_ context.Context) (*batch.Batch, error) {
	if s.pos >= len(s.bats) {
		return nil, io.EOF
	}
	bat := s.bats[s.pos]
	s.pos++
	return bat, nil
}

// nextNonEmpty skips empty batches of src.
func nextNonEmpty(ctx context.Context, src batchSource) (*batch.Batch, error) {
	for {
		bat, err := src.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !bat.IsEmpty() {
			return bat, nil
		}
	}
}

// mergeSorted is a k-way merge of sorted sources into batches of
// rowsInBlock rows. On equal keys the row of the earlier source goes first.
func mergeSorted(
	ctx context.Context,
	sources []batchSource,
	attrs []string,
	typs []types.Type,
	keys []sort.Key,
	rowsInBlock int,
	emit func(*batch.Batch) error,
) error {
	keyTypes := make([]types.Type, len(keys))
	desc := make([]bool, len(keys))
	for i, k := range keys {
		keyTypes[i] = typs[k.Pos]
		desc[i] = k.Desc
	}
	kc := newKeyComparer(keyTypes, desc, len(sources))

	cursors := make([]*cursor, len(sources))
	for i, src := range sources {
		bat, err := nextNonEmpty(ctx, src)
		if err == io.EOF {
			continue
		}
		if err != nil {
			return err
		}
		cursors[i] = newCursor(kc, i, bat, keys)
	}

	out := batch.NewWithSchema(attrs, typs)
	for {
		best := -1
		for i, c := range cursors {
			if c == nil {
				continue
			}
			if best < 0 || c.compareWith(cursors[best]) < 0 {
				best = i
			}
		}
		if best < 0 {
			break
		}

		c := cursors[best]
		if err := out.UnionOne(c.bat, int64(c.pos)); err != nil {
			return err
		}
		if out.RowCount() >= rowsInBlock {
			if err := emit(out); err != nil {
				return err
			}
			out = batch.NewWithSchema(attrs, typs)
		}

		c.next()
		if c.atEnd() {
			bat, err := nextNonEmpty(ctx, sources[best])
			if err == io.EOF {
				cursors[best] = nil
				continue
			}
			if err != nil {
				return err
			}
			c.reset(bat, keys)
		}
	}
	if !out.IsEmpty() {
		return emit(out)
	}
	return nil
}
