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
	"sync/atomic"
)

// Counter collects spill io statistics. Counters are attached to a context
// with WithCounter and updated by every storage call made with it.
type Counter struct {
	RunsCreated   int64
	RunsRemoved   int64
	SegmentsWrite int64
	BytesWrite    int64
	SegmentsRead  int64
	BytesRead     int64
}

type ctxKeyCounters struct{}

var CtxKeyCounters = ctxKeyCounters{}

func updateCounters(ctx context.Context, fn func(*Counter)) {
	v := ctx.Value(CtxKeyCounters)
	if v == nil {
		return
	}
	counters := v.([]*Counter)
	for _, counter := range counters {
		fn(counter)
	}
}

func WithCounter(ctx context.Context, counter *Counter) context.Context {
	// check existed
	v := ctx.Value(CtxKeyCounters)
	if v == nil {
		return context.WithValue(ctx, CtxKeyCounters, []*Counter{counter})
	}
	counters := v.([]*Counter)
	newCounters := make([]*Counter, len(counters), len(counters)+1)
	copy(newCounters, counters)
	newCounters = append(newCounters, counter)
	return context.WithValue(ctx, CtxKeyCounters, newCounters)
}

func countWrite(ctx context.Context, n int) {
	updateCounters(ctx, func(c *Counter) {
		atomic.AddInt64(&c.SegmentsWrite, 1)
		atomic.AddInt64(&c.BytesWrite, int64(n))
	})
}

func countRead(ctx context.Context, n int) {
	updateCounters(ctx, func(c *Counter) {
		atomic.AddInt64(&c.SegmentsRead, 1)
		atomic.AddInt64(&c.BytesRead, int64(n))
	})
}

func countRun(ctx context.Context, created bool) {
	updateCounters(ctx, func(c *Counter) {
		if created {
			atomic.AddInt64(&c.RunsCreated, 1)
		} else {
			atomic.AddInt64(&c.RunsRemoved, 1)
		}
	})
}

// Snapshot returns a consistent copy of c.
func (c *Counter) Snapshot() Counter {
	return Counter{
		RunsCreated:   atomic.LoadInt64(&c.RunsCreated),
		RunsRemoved:   atomic.LoadInt64(&c.RunsRemoved),
		SegmentsWrite: atomic.LoadInt64(&c.SegmentsWrite),
		BytesWrite:    atomic.LoadInt64(&c.BytesWrite),
		SegmentsRead:  atomic.LoadInt64(&c.SegmentsRead),
		BytesRead:     atomic.LoadInt64(&c.BytesRead),
	}
}
