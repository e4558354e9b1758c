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

package lrucache

import (
	"context"
	"sync"
)

type CapacityFunc func() int64

func ConstCapacity(n int64) CapacityFunc {
	return func() int64 {
		return n
	}
}

// Cache is an in-memory cache weighted by item size. When the total size
// exceeds capacity, the least recently used items are evicted.
//
// Recency is tracked by re-enqueuing an item on every hit with a new
// generation. Queue entries with an outdated generation are skipped on
// eviction and dropped when the queue is compacted.
type Cache[K comparable, V any] struct {
	capacity CapacityFunc

	postSet   func(ctx context.Context, key K, value V, size int64)
	postGet   func(ctx context.Context, key K, value V, size int64)
	postEvict func(ctx context.Context, key K, value V, size int64)

	mutex sync.Mutex
	htab  map[K]*_CacheItem[K, V]
	queue *Queue[queueEntry[K, V]]
	used  int64
	// loads in flight by key
	loads map[K]*loadCall[V]
}

type loadCall[V any] struct {
	done  chan struct{}
	value V
	err   error
}

type _CacheItem[K comparable, V any] struct {
	key   K
	value V
	size  int64
	gen   uint64
}

type queueEntry[K comparable, V any] struct {
	item *_CacheItem[K, V]
	gen  uint64
}

func New[K comparable, V any](
	capacity CapacityFunc,
	postSet func(ctx context.Context, key K, value V, size int64),
	postGet func(ctx context.Context, key K, value V, size int64),
	postEvict func(ctx context.Context, key K, value V, size int64),
) *Cache[K, V] {
	return &Cache[K, V]{
		capacity:  capacity,
		postSet:   postSet,
		postGet:   postGet,
		postEvict: postEvict,
		htab:      make(map[K]*_CacheItem[K, V]),
		loads:     make(map[K]*loadCall[V]),
		queue:     NewQueue[queueEntry[K, V]](),
	}
}

// Set inserts key as the most recently used item and evicts until the
// cache fits its capacity. An existing key is left untouched.
func (c *Cache[K, V]) Set(ctx context.Context, key K, value V, size int64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.set(ctx, key, value, size)
}

// not thread safe. Internal use only
func (c *Cache[K, V]) set(ctx context.Context, key K, value V, size int64) {
	if _, ok := c.htab[key]; ok {
		// existed
		return
	}
	item := &_CacheItem[K, V]{
		key:   key,
		value: value,
		size:  size,
	}
	c.htab[key] = item
	c.used += size
	c.touch(item)
	if c.postSet != nil {
		c.postSet(ctx, key, value, size)
	}
	c.evictAll(ctx)
}

func (c *Cache[K, V]) Get(ctx context.Context, key K) (value V, ok bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	item, ok := c.get(ctx, key)
	if !ok {
		return
	}
	return item.value, true
}

// not thread safe. Internal use only
func (c *Cache[K, V]) get(ctx context.Context, key K) (*_CacheItem[K, V], bool) {
	item, ok := c.htab[key]
	if !ok {
		return nil, false
	}
	c.touch(item)
	if c.postGet != nil {
		c.postGet(ctx, item.key, item.value, item.size)
	}
	return item, true
}

// GetOrLoad returns the cached value of key, or calls load and caches its
// result. load runs without holding the cache lock, concurrent misses of
// the same key wait for one load and share its result.
func (c *Cache[K, V]) GetOrLoad(
	ctx context.Context,
	key K,
	load func() (V, int64, error),
) (value V, err error) {
	c.mutex.Lock()
	if item, ok := c.get(ctx, key); ok {
		c.mutex.Unlock()
		return item.value, nil
	}
	if call, ok := c.loads[key]; ok {
		c.mutex.Unlock()
		select {
		case <-call.done:
			return call.value, call.err
		case <-ctx.Done():
			return value, ctx.Err()
		}
	}
	call := &loadCall[V]{done: make(chan struct{})}
	c.loads[key] = call
	c.mutex.Unlock()

	var size int64
	call.value, size, call.err = load()

	c.mutex.Lock()
	delete(c.loads, key)
	if call.err == nil {
		c.set(ctx, key, call.value, size)
	}
	c.mutex.Unlock()
	close(call.done)
	return call.value, call.err
}

func (c *Cache[K, V]) Delete(ctx context.Context, key K) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	item, ok := c.htab[key]
	if !ok {
		return
	}
	c.deleteItem(ctx, item)
	// queue entries are dropped lazily
}

// Reset evicts every item.
func (c *Cache[K, V]) Reset(ctx context.Context) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for _, item := range c.htab {
		c.deleteItem(ctx, item)
	}
	c.queue = NewQueue[queueEntry[K, V]]()
}

func (c *Cache[K, V]) Used() int64 {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.used
}

func (c *Cache[K, V]) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.htab)
}

// not thread safe. Internal use only
func (c *Cache[K, V]) touch(item *_CacheItem[K, V]) {
	item.gen++
	c.queue.enqueue(queueEntry[K, V]{item: item, gen: item.gen})
	if c.queue.Len() > 2*len(c.htab)+maxQueuePartCapacity {
		c.compact()
	}
}

// not thread safe. Internal use only
func (c *Cache[K, V]) compact() {
	n := c.queue.Len()
	for i := 0; i < n; i++ {
		entry, _ := c.queue.dequeue()
		if c.live(entry) {
			c.queue.enqueue(entry)
		}
	}
}

// not thread safe. Internal use only
func (c *Cache[K, V]) live(entry queueEntry[K, V]) bool {
	item, ok := c.htab[entry.item.key]
	return ok && item == entry.item && item.gen == entry.gen
}

// not thread safe. Internal use only
func (c *Cache[K, V]) evictAll(ctx context.Context) {
	target := c.capacity()
	if target < 0 {
		target = 0
	}
	for c.used > target {
		entry, ok := c.queue.dequeue()
		if !ok {
			return
		}
		if !c.live(entry) {
			continue
		}
		c.deleteItem(ctx, entry.item)
	}
}

// not thread safe. Internal use only
func (c *Cache[K, V]) deleteItem(ctx context.Context, item *_CacheItem[K, V]) {
	delete(c.htab, item.key)
	c.used -= item.size
	if c.postEvict != nil {
		c.postEvict(ctx, item.key, item.value, item.size)
	}
}
