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
	"sync/atomic"

	"github.com/matrixorigin/mergejoin/pkg/container/batch"
	"github.com/matrixorigin/mergejoin/pkg/fileservice/lrucache"
)

// BlockCache caches materialized right batches by batch index, weighted by
// batch size. An evicted batch stays valid for callers still holding it.
type BlockCache struct {
	lru    *lrucache.Cache[int, *batch.Batch]
	hits   int64
	misses int64
}

func NewBlockCache(capacity int64) *BlockCache {
	c := &BlockCache{}
	c.lru = lrucache.New[int, *batch.Batch](
		lrucache.ConstCapacity(capacity),
		func(_ context.Context, _ int, _ *batch.Batch, _ int64) {
			atomic.AddInt64(&c.misses, 1)
		},
		func(_ context.Context, _ int, _ *batch.Batch, _ int64) {
			atomic.AddInt64(&c.hits, 1)
		},
		nil,
	)
	return c
}

// Get returns batch idx, loading and caching it on a miss.
func (c *BlockCache) Get(
	ctx context.Context,
	idx int,
	loader func(ctx context.Context) (*batch.Batch, error),
) (*batch.Batch, error) {
	return c.lru.GetOrLoad(ctx, idx, func() (*batch.Batch, int64, error) {
		bat, err := loader(ctx)
		if err != nil {
			return nil, 0, err
		}
		return bat, int64(bat.Size()), nil
	})
}

func (c *BlockCache) Used() int64 {
	return c.lru.Used()
}

func (c *BlockCache) Hits() int64 {
	return atomic.LoadInt64(&c.hits)
}

func (c *BlockCache) Misses() int64 {
	return atomic.LoadInt64(&c.misses)
}

func (c *BlockCache) Reset(ctx context.Context) {
	c.lru.Reset(ctx)
}
