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
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/matrixorigin/mergejoin/pkg/common/moerr"
	"github.com/matrixorigin/mergejoin/pkg/container/batch"
)

// ParallelJoin joins every left batch against m on a pool of poolSize
// workers, NumCPU when poolSize is not positive. result[i] holds the
// joined batches of lefts[i] in order. The first error cancels the
// batches not started yet. A panic of a worker is returned as an
// internal error.
func ParallelJoin(ctx context.Context, m *MergeJoin, lefts []*batch.Batch, poolSize int) ([][]*batch.Batch, error) {
	if err := m.prepareProbe(ctx); err != nil {
		return nil, err
	}
	if poolSize <= 0 {
		poolSize = runtime.NumCPU()
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	result := make([][]*batch.Batch, len(lefts))
	for i := range lefts {
		i := i
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			defer func() {
				if v := recover(); v != nil {
					fail(moerr.ConvertPanicError(ctx, v))
				}
			}()
			bats, err := joinAll(ctx, m, lefts[i])
			if err != nil {
				fail(err)
				return
			}
			result[i] = bats
		})
		if err != nil {
			wg.Done()
			fail(err)
			break
		}
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return result, nil
}

// joinAll calls JoinBatch on left until no token is left.
func joinAll(ctx context.Context, m *MergeJoin, left *batch.Batch) ([]*batch.Batch, error) {
	var (
		bats []*batch.Batch
		tok  *Token
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, next, err := m.JoinBatch(ctx, left, tok)
		if err != nil {
			return nil, err
		}
		if !out.IsEmpty() {
			bats = append(bats, out)
		}
		if next == nil {
			return bats, nil
		}
		tok = next
	}
}
