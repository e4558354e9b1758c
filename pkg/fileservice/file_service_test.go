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

package fileservice

import (
	"context"
	"fmt"
	"io"
	mrand "math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matrixorigin/mergejoin/pkg/common/moerr"
	"github.com/matrixorigin/mergejoin/pkg/container/batch"
	"github.com/matrixorigin/mergejoin/pkg/container/types"
	"github.com/matrixorigin/mergejoin/pkg/container/vector"
)

func newTestBatch(t testing.TB, start int64, n int) *batch.Batch {
	bat := batch.NewWithSchema(
		[]string{"k", "v"},
		[]types.Type{types.T_int64.ToType(), types.T_varchar.ToType()},
	)
	for i := int64(0); i < int64(n); i++ {
		assert.Nil(t, vector.Append(bat.Vecs[0], start+i, false))
		assert.Nil(t, vector.AppendString(bat.Vecs[1], fmt.Sprintf("v%d", start+i), i%7 == 3))
	}
	bat.SetRowCount(n)
	return bat
}

func testTempStorage(
	t *testing.T,
	newFS func() TempStorage,
) {

	t.Run("basic", func(t *testing.T) {
		ctx := context.Background()
		fs := newFS()
		defer fs.Close()

		run, err := fs.CreateRun(ctx)
		assert.Nil(t, err)
		assert.Nil(t, fs.AppendSorted(ctx, run, newTestBatch(t, 0, 3)))
		assert.Nil(t, fs.AppendSorted(ctx, run, newTestBatch(t, 3, 5)))
		assert.Nil(t, fs.SealRun(ctx, run))
		// sealing twice is a no-op
		assert.Nil(t, fs.SealRun(ctx, run))

		n, err := fs.SegmentCount(run)
		assert.Nil(t, err)
		assert.Equal(t, 2, n)

		bat, err := fs.ReadSegment(ctx, run, 1)
		assert.Nil(t, err)
		assert.Equal(t, 5, bat.RowCount())
		assert.Equal(t, newTestBatch(t, 3, 5).String(), bat.String())

		r, err := fs.OpenForSequentialRead(ctx, run)
		assert.Nil(t, err)
		var keys []int64
		for {
			bat, err := r.Next(ctx)
			if err == io.EOF {
				break
			}
			assert.Nil(t, err)
			keys = append(keys, vector.MustFixedCol[int64](bat.Vecs[0])...)
		}
		assert.Nil(t, r.Close())
		assert.Equal(t, []int64{0, 1, 2, 3, 4, 5, 6, 7}, keys)

		assert.Nil(t, fs.RemoveRun(ctx, run))
		_, err = fs.SegmentCount(run)
		assert.True(t, moerr.IsMoErrCode(err, moerr.ErrFileNotFound))
	})

	t.Run("empty run", func(t *testing.T) {
		ctx := context.Background()
		fs := newFS()
		defer fs.Close()

		run, err := fs.CreateRun(ctx)
		assert.Nil(t, err)
		assert.Nil(t, fs.SealRun(ctx, run))
		r, err := fs.OpenForSequentialRead(ctx, run)
		assert.Nil(t, err)
		_, err = r.Next(ctx)
		assert.Equal(t, io.EOF, err)
		assert.Nil(t, r.Close())
	})

	t.Run("random", func(t *testing.T) {
		ctx := context.Background()
		fs := newFS()
		defer fs.Close()

		runs := make([]RunHandle, 4)
		sizes := make([][]int, len(runs))
		for i := range runs {
			var err error
			runs[i], err = fs.CreateRun(ctx)
			assert.Nil(t, err)
		}
		// interleave appends across runs
		var start int64
		for round := 0; round < 8; round++ {
			for i, run := range runs {
				n := 1 + mrand.Intn(64)
				assert.Nil(t, fs.AppendSorted(ctx, run, newTestBatch(t, start, n)))
				sizes[i] = append(sizes[i], n)
				start += int64(n)
			}
		}
		for _, run := range runs {
			assert.Nil(t, fs.SealRun(ctx, run))
		}

		var wg sync.WaitGroup
		for i, run := range runs {
			i, run := i, run
			wg.Add(1)
			go func() {
				defer wg.Done()
				for _, idx := range mrand.Perm(len(sizes[i])) {
					bat, err := fs.ReadSegment(ctx, run, idx)
					assert.Nil(t, err)
					assert.Equal(t, sizes[i][idx], bat.RowCount())
				}
			}()
		}
		wg.Wait()
	})

	t.Run("errors", func(t *testing.T) {
		ctx := context.Background()
		fs := newFS()
		defer fs.Close()

		missing := RunHandle{ID: 42, Name: "missing"}
		err := fs.AppendSorted(ctx, missing, newTestBatch(t, 0, 1))
		assert.True(t, moerr.IsMoErrCode(err, moerr.ErrFileNotFound))
		err = fs.RemoveRun(ctx, missing)
		assert.True(t, moerr.IsMoErrCode(err, moerr.ErrFileNotFound))

		run, err := fs.CreateRun(ctx)
		assert.Nil(t, err)
		assert.Nil(t, fs.AppendSorted(ctx, run, newTestBatch(t, 0, 1)))
		_, err = fs.ReadSegment(ctx, run, 0)
		assert.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidState))
		_, err = fs.OpenForSequentialRead(ctx, run)
		assert.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidState))

		assert.Nil(t, fs.SealRun(ctx, run))
		err = fs.AppendSorted(ctx, run, newTestBatch(t, 1, 1))
		assert.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidState))
		_, err = fs.ReadSegment(ctx, run, 1)
		assert.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
		_, err = fs.ReadSegment(ctx, run, -1)
		assert.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
	})

	t.Run("counter", func(t *testing.T) {
		var counter Counter
		ctx := WithCounter(context.Background(), &counter)
		fs := newFS()
		defer fs.Close()

		run, err := fs.CreateRun(ctx)
		assert.Nil(t, err)
		assert.Nil(t, fs.AppendSorted(ctx, run, newTestBatch(t, 0, 10)))
		assert.Nil(t, fs.SealRun(ctx, run))
		_, err = fs.ReadSegment(ctx, run, 0)
		assert.Nil(t, err)
		assert.Nil(t, fs.RemoveRun(ctx, run))

		snapshot := counter.Snapshot()
		assert.Equal(t, int64(1), snapshot.RunsCreated)
		assert.Equal(t, int64(1), snapshot.RunsRemoved)
		assert.Equal(t, int64(1), snapshot.SegmentsWrite)
		assert.Equal(t, int64(1), snapshot.SegmentsRead)
		assert.Equal(t, snapshot.BytesWrite, snapshot.BytesRead)
		assert.True(t, snapshot.BytesWrite > 0)
	})

}

func benchmarkTempStorage(b *testing.B, newFS func() TempStorage) {
	ctx := context.Background()
	fs := newFS()
	defer fs.Close()
	bat := newTestBatch(b, 0, 8192)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		run, err := fs.CreateRun(ctx)
		assert.Nil(b, err)
		assert.Nil(b, fs.AppendSorted(ctx, run, bat))
		assert.Nil(b, fs.SealRun(ctx, run))
		_, err = fs.ReadSegment(ctx, run, 0)
		assert.Nil(b, err)
		assert.Nil(b, fs.RemoveRun(ctx, run))
	}
}
