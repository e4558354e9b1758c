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
	"io"
	"sync"

	"github.com/matrixorigin/mergejoin/pkg/container/batch"
)

// MemoryFS is an in-memory TempStorage, segments are kept encoded so that
// it exercises the same codec as the durable backends.
type MemoryFS struct {
	sync.RWMutex
	compress bool
	runs     map[uint64]*memoryRun
	nextID   uint64
}

type memoryRun struct {
	runMeta
	data [][]byte
}

var _ TempStorage = new(MemoryFS)

func NewMemoryFS(compress bool) (*MemoryFS, error) {
	return &MemoryFS{
		compress: compress,
		runs:     make(map[uint64]*memoryRun),
	}, nil
}

func (m *MemoryFS) Name() string {
	return "memory"
}

func (m *MemoryFS) CreateRun(ctx context.Context) (RunHandle, error) {
	m.Lock()
	defer m.Unlock()
	m.nextID++
	h := RunHandle{ID: m.nextID, Name: newRunName(m.nextID)}
	m.runs[h.ID] = &memoryRun{
		runMeta: runMeta{handle: h},
	}
	countRun(ctx, true)
	return h, nil
}

func (m *MemoryFS) AppendSorted(ctx context.Context, h RunHandle, bat *batch.Batch) error {
	data, err := encodeSegment(bat, m.compress)
	if err != nil {
		return err
	}
	m.Lock()
	defer m.Unlock()
	run, ok := m.runs[h.ID]
	if !ok {
		return errRunNotFound(ctx, h)
	}
	if run.sealed {
		return errRunSealed(ctx, h)
	}
	run.segments = append(run.segments, segmentInfo{
		offset: int64(len(run.data)),
		size:   int64(len(data)),
	})
	run.data = append(run.data, data)
	countWrite(ctx, len(data))
	return nil
}

func (m *MemoryFS) SealRun(ctx context.Context, h RunHandle) error {
	m.Lock()
	defer m.Unlock()
	run, ok := m.runs[h.ID]
	if !ok {
		return errRunNotFound(ctx, h)
	}
	run.sealed = true
	return nil
}

func (m *MemoryFS) sealedRun(ctx context.Context, h RunHandle) (*memoryRun, error) {
	run, ok := m.runs[h.ID]
	if !ok {
		return nil, errRunNotFound(ctx, h)
	}
	if !run.sealed {
		return nil, errRunNotSealed(ctx, h)
	}
	return run, nil
}

func (m *MemoryFS) ReadSegment(ctx context.Context, h RunHandle, idx int) (*batch.Batch, error) {
	m.RLock()
	run, err := m.sealedRun(ctx, h)
	if err != nil {
		m.RUnlock()
		return nil, err
	}
	if idx < 0 || idx >= len(run.data) {
		m.RUnlock()
		return nil, errSegmentOutOfRange(ctx, h, idx, len(run.data))
	}
	data := run.data[idx]
	m.RUnlock()

	countRead(ctx, len(data))
	return decodeSegment(data)
}

func (m *MemoryFS) OpenForSequentialRead(ctx context.Context, h RunHandle) (RunReader, error) {
	m.RLock()
	defer m.RUnlock()
	run, err := m.sealedRun(ctx, h)
	if err != nil {
		return nil, err
	}
	// sealed runs are immutable, sharing the slice is safe
	return &memoryRunReader{
		data: run.data,
	}, nil
}

func (m *MemoryFS) SegmentCount(h RunHandle) (int, error) {
	m.RLock()
	defer m.RUnlock()
	run, ok := m.runs[h.ID]
	if !ok {
		return 0, errRunNotFound(context.TODO(), h)
	}
	return len(run.data), nil
}

func (m *MemoryFS) RemoveRun(ctx context.Context, h RunHandle) error {
	m.Lock()
	defer m.Unlock()
	if _, ok := m.runs[h.ID]; !ok {
		return errRunNotFound(ctx, h)
	}
	delete(m.runs, h.ID)
	countRun(ctx, false)
	return nil
}

func (m *MemoryFS) Close() error {
	m.Lock()
	defer m.Unlock()
	m.runs = make(map[uint64]*memoryRun)
	return nil
}

type memoryRunReader struct {
	data [][]byte
	pos  int
}

func (r *memoryRunReader) Next(ctx context.Context) (*batch.Batch, error) {
	if r.pos >= len(r.data) {
		return nil, io.EOF
	}
	data := r.data[r.pos]
	r.pos++
	countRead(ctx, len(data))
	return decodeSegment(data)
}

func (r *memoryRunReader) Close() error {
	return nil
}
