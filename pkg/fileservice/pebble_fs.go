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
	"encoding/binary"
	"io"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"

	"github.com/matrixorigin/mergejoin/pkg/container/batch"
)

// PebbleFS stores runs in a pebble instance, one key per segment:
//
//	"run/" | run id (8 bytes, big endian) | segment index (4 bytes, big endian)
//
// so that the segments of a run are adjacent and ordered.
type PebbleFS struct {
	db       *pebble.DB
	compress bool

	sync.RWMutex
	runs   map[uint64]*runMeta
	nextID uint64
}

var _ TempStorage = new(PebbleFS)

var runKeyPrefix = []byte("run/")

func NewPebbleFS(dir string, compress bool) (*PebbleFS, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "open pebble spill storage at %s", dir)
	}
	return &PebbleFS{
		db:       db,
		compress: compress,
		runs:     make(map[uint64]*runMeta),
	}, nil
}

func segmentKey(id uint64, idx int) []byte {
	k := make([]byte, len(runKeyPrefix)+12)
	copy(k, runKeyPrefix)
	binary.BigEndian.PutUint64(k[len(runKeyPrefix):], id)
	binary.BigEndian.PutUint32(k[len(runKeyPrefix)+8:], uint32(idx))
	return k
}

// runBounds returns [lower, upper) covering every segment of run id.
func runBounds(id uint64) ([]byte, []byte) {
	lower := segmentKey(id, 0)[:len(runKeyPrefix)+8]
	upper := segmentKey(id+1, 0)[:len(runKeyPrefix)+8]
	return lower, upper
}

func (p *PebbleFS) Name() string {
	return "pebble"
}

func (p *PebbleFS) CreateRun(ctx context.Context) (RunHandle, error) {
	p.Lock()
	defer p.Unlock()
	p.nextID++
	h := RunHandle{ID: p.nextID, Name: newRunName(p.nextID)}
	p.runs[h.ID] = &runMeta{handle: h}
	countRun(ctx, true)
	return h, nil
}

func (p *PebbleFS) AppendSorted(ctx context.Context, h RunHandle, bat *batch.Batch) error {
	data, err := encodeSegment(bat, p.compress)
	if err != nil {
		return err
	}
	p.Lock()
	defer p.Unlock()
	run, ok := p.runs[h.ID]
	if !ok {
		return errRunNotFound(ctx, h)
	}
	if run.sealed {
		return errRunSealed(ctx, h)
	}
	idx := len(run.segments)
	if err := p.db.Set(segmentKey(h.ID, idx), data, pebble.NoSync); err != nil {
		return errors.Wrapf(err, "append to run %s", h)
	}
	run.segments = append(run.segments, segmentInfo{
		offset: int64(idx),
		size:   int64(len(data)),
	})
	countWrite(ctx, len(data))
	return nil
}

func (p *PebbleFS) SealRun(ctx context.Context, h RunHandle) error {
	p.Lock()
	run, ok := p.runs[h.ID]
	if !ok {
		p.Unlock()
		return errRunNotFound(ctx, h)
	}
	if run.sealed {
		p.Unlock()
		return nil
	}
	run.sealed = true
	p.Unlock()

	if err := p.db.Flush(); err != nil {
		return errors.Wrapf(err, "seal run %s", h)
	}
	return nil
}

func (p *PebbleFS) sealedRun(ctx context.Context, h RunHandle) (*runMeta, error) {
	p.RLock()
	defer p.RUnlock()
	run, ok := p.runs[h.ID]
	if !ok {
		return nil, errRunNotFound(ctx, h)
	}
	if !run.sealed {
		return nil, errRunNotSealed(ctx, h)
	}
	return run, nil
}

func (p *PebbleFS) ReadSegment(ctx context.Context, h RunHandle, idx int) (*batch.Batch, error) {
	run, err := p.sealedRun(ctx, h)
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(run.segments) {
		return nil, errSegmentOutOfRange(ctx, h, idx, len(run.segments))
	}
	v, c, err := p.db.Get(segmentKey(h.ID, idx))
	if err == pebble.ErrNotFound {
		return nil, errors.Newf("segment %d of run %s is lost", idx, h)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read segment %d of run %s", idx, h)
	}
	defer c.Close()
	countRead(ctx, len(v))
	// decodeSegment copies every column out of v
	return decodeSegment(v)
}

func (p *PebbleFS) OpenForSequentialRead(ctx context.Context, h RunHandle) (RunReader, error) {
	if _, err := p.sealedRun(ctx, h); err != nil {
		return nil, err
	}
	lower, upper := runBounds(h.ID)
	itr := p.db.NewIter(&pebble.IterOptions{
		LowerBound: lower,
		UpperBound: upper,
	})
	itr.First()
	return &pebbleRunReader{handle: h, itr: itr}, nil
}

func (p *PebbleFS) SegmentCount(h RunHandle) (int, error) {
	p.RLock()
	defer p.RUnlock()
	run, ok := p.runs[h.ID]
	if !ok {
		return 0, errRunNotFound(context.TODO(), h)
	}
	return len(run.segments), nil
}

func (p *PebbleFS) RemoveRun(ctx context.Context, h RunHandle) error {
	p.Lock()
	if _, ok := p.runs[h.ID]; !ok {
		p.Unlock()
		return errRunNotFound(ctx, h)
	}
	delete(p.runs, h.ID)
	p.Unlock()

	countRun(ctx, false)
	lower, upper := runBounds(h.ID)
	if err := p.db.DeleteRange(lower, upper, pebble.NoSync); err != nil {
		return errors.Wrapf(err, "remove run %s", h)
	}
	return nil
}

func (p *PebbleFS) Close() error {
	p.Lock()
	defer p.Unlock()
	p.runs = make(map[uint64]*runMeta)
	return p.db.Close()
}

type pebbleRunReader struct {
	handle RunHandle
	itr    *pebble.Iterator
}

func (r *pebbleRunReader) Next(ctx context.Context) (*batch.Batch, error) {
	if !r.itr.Valid() {
		if err := r.itr.Error(); err != nil {
			return nil, errors.Wrapf(err, "read run %s", r.handle)
		}
		return nil, io.EOF
	}
	v := r.itr.Value()
	countRead(ctx, len(v))
	bat, err := decodeSegment(v)
	if err != nil {
		return nil, err
	}
	r.itr.Next()
	return bat, nil
}

func (r *pebbleRunReader) Close() error {
	return r.itr.Close()
}
