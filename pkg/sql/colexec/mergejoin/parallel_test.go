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
	"fmt"
	"math/rand"
	"testing"

	"github.com/lni/goutils/leaktest"
	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/mergejoin/pkg/common/moerr"
	"github.com/matrixorigin/mergejoin/pkg/container/batch"
	"github.com/matrixorigin/mergejoin/pkg/fileservice"
)

func TestParallelJoin(t *testing.T) {
	defer leaktest.AfterTest(t)()
	ctx := context.Background()

	fs, err := fileservice.NewMemoryFS(false)
	require.NoError(t, err)
	defer fs.Close()

	r := rand.New(rand.NewSource(3))
	rights := make([][]int64, 6)
	bats := make([]*batch.Batch, len(rights))
	for i := range rights {
		rights[i] = randomKeys(r, 10, 20)
		bats[i] = newRightBatch(t, rights[i], fmt.Sprintf("r%d_", i))
	}
	cfg := DefaultConfig()
	cfg.RowsInRightBlock = 4
	cfg.MaxJoinedBlockRows = 5
	cfg.MaxBytesInJoin = 200
	cfg.JoinOverflowMode = OverflowBreak
	cfg.CacheCapacity = 100
	m := newTestJoin(t, newArgument(Left, All, false, cfg), fs, bats...)
	defer m.Close(ctx)

	lefts := make([][]int64, 32)
	leftBats := make([]*batch.Batch, len(lefts))
	for i := range lefts {
		lefts[i] = randomKeys(r, r.Intn(10), 25)
		leftBats[i] = newLeftBatch(t, lefts[i])
	}

	result, err := ParallelJoin(ctx, m, leftBats, 4)
	require.NoError(t, err)
	require.Len(t, result, len(lefts))
	for i, outs := range result {
		var rows []string
		for _, out := range outs {
			require.LessOrEqual(t, out.RowCount(), cfg.MaxJoinedBlockRows)
			rows = append(rows, rowsOf(out)...)
		}
		expect := expectedRows(Left, All, false, lefts[i], rights)
		if len(expect) == 0 {
			require.Empty(t, rows)
		} else {
			require.Equal(t, expect, rows, "left batch %d", i)
		}
	}
	require.True(t, m.Stats().Spilled)
}

func TestParallelJoinError(t *testing.T) {
	defer leaktest.AfterTest(t)()
	ctx := context.Background()

	m := newTestJoin(t, newArgument(Inner, All, false, DefaultConfig()), nil,
		newRightBatch(t, []int64{1, 2}, "r"))
	lefts := []*batch.Batch{
		newLeftBatch(t, []int64{1}),
		newRightBatch(t, []int64{1}, "bad"),
		newLeftBatch(t, []int64{2}),
	}
	_, err := ParallelJoin(ctx, m, lefts, 2)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))

	_, err = ParallelJoin(ctx, m, lefts[:1], 0)
	require.NoError(t, err)
}

func TestParallelJoinPanic(t *testing.T) {
	defer leaktest.AfterTest(t)()
	ctx := context.Background()

	m := newTestJoin(t, newArgument(Inner, All, false, DefaultConfig()), nil,
		newRightBatch(t, []int64{1, 2}, "r"))
	// a batch without its key vector
	broken := batch.NewWithSize(2)
	broken.SetRowCount(1)
	lefts := []*batch.Batch{newLeftBatch(t, []int64{1}), broken}

	_, err := ParallelJoin(ctx, m, lefts, 2)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInternal))

	// the join is still usable
	result, err := ParallelJoin(ctx, m, lefts[:1], 2)
	require.NoError(t, err)
	require.Equal(t, expectedRows(Inner, All, false, []int64{1}, [][]int64{{1, 2}}), rowsOf(result[0][0]))
}
