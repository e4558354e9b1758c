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
	"bufio"
	"context"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/matrixorigin/mergejoin/pkg/common/moerr"
	"github.com/matrixorigin/mergejoin/pkg/container/batch"
)

const sentinelFileName = "thisisalocalfileservicedir"

// LocalFS is a TempStorage implementation backed by local file system.
// Each run is one file of length prefixed segments. A run is written
// under .tmp and moved into the root dir when sealed.
type LocalFS struct {
	rootPath string
	compress bool

	sync.RWMutex
	dirFiles map[string]*os.File
	runs     map[uint64]*localRun
	nextID   uint64
}

type localRun struct {
	runMeta
	tmpPath string
	path    string
	// w is the file being appended, nil once sealed
	w      *os.File
	offset int64
	// r is opened on first read and shared by all readers, ReadAt is safe
	// for concurrent use
	r *os.File
}

var _ TempStorage = new(LocalFS)

func NewLocalFS(rootPath string, compress bool) (*LocalFS, error) {

	// ensure dir
	f, err := os.Open(rootPath)
	if os.IsNotExist(err) {
		// not exists, create
		err := os.MkdirAll(rootPath, 0755)
		if err != nil {
			return nil, err
		}
		err = os.WriteFile(filepath.Join(rootPath, sentinelFileName), nil, 0644)
		if err != nil {
			return nil, err
		}

	} else if err != nil {
		// stat error
		return nil, err

	} else {
		// existed, check if a real file service dir
		defer f.Close()
		entries, err := f.ReadDir(1)
		if len(entries) == 0 {
			if errors.Is(err, io.EOF) {
				// empty dir, ok
				if err := os.WriteFile(filepath.Join(rootPath, sentinelFileName), nil, 0644); err != nil {
					return nil, err
				}
			} else if err != nil {
				// ReadDir error
				return nil, err
			}
		} else {
			// not empty, check sentinel file
			_, err := os.Stat(filepath.Join(rootPath, sentinelFileName))
			if os.IsNotExist(err) {
				return nil, moerr.NewInvalidPath(context.TODO(), rootPath+" is not a file service dir")
			} else if err != nil {
				return nil, err
			}
		}
	}

	// create tmp dir
	if err := os.MkdirAll(filepath.Join(rootPath, ".tmp"), 0755); err != nil {
		return nil, err
	}

	return &LocalFS{
		rootPath: rootPath,
		compress: compress,
		dirFiles: make(map[string]*os.File),
		runs:     make(map[uint64]*localRun),
	}, nil
}

func (l *LocalFS) Name() string {
	return "local"
}

func (l *LocalFS) CreateRun(ctx context.Context) (RunHandle, error) {
	l.Lock()
	defer l.Unlock()

	l.nextID++
	h := RunHandle{ID: l.nextID, Name: newRunName(l.nextID)}
	tmpPath := filepath.Join(l.rootPath, ".tmp", h.Name+".tmp")
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return RunHandle{}, errors.Wrapf(err, "create run %s", h)
	}
	l.runs[h.ID] = &localRun{
		runMeta: runMeta{handle: h},
		tmpPath: tmpPath,
		path:    filepath.Join(l.rootPath, h.Name),
		w:       f,
	}
	countRun(ctx, true)
	return h, nil
}

func (l *LocalFS) getRun(ctx context.Context, h RunHandle) (*localRun, error) {
	run, ok := l.runs[h.ID]
	if !ok {
		return nil, errRunNotFound(ctx, h)
	}
	return run, nil
}

func (l *LocalFS) AppendSorted(ctx context.Context, h RunHandle, bat *batch.Batch) error {
	data, err := encodeSegment(bat, l.compress)
	if err != nil {
		return err
	}

	l.Lock()
	defer l.Unlock()
	run, err := l.getRun(ctx, h)
	if err != nil {
		return err
	}
	if run.sealed {
		return errRunSealed(ctx, h)
	}

	var header [4]byte
	binary.LittleEndian.PutUint32(header[:], uint32(len(data)))
	if _, err := run.w.Write(header[:]); err != nil {
		return errors.Wrapf(err, "append to run %s", h)
	}
	if _, err := run.w.Write(data); err != nil {
		return errors.Wrapf(err, "append to run %s", h)
	}
	run.segments = append(run.segments, segmentInfo{
		offset: run.offset + 4,
		size:   int64(len(data)),
	})
	run.offset += int64(len(data)) + 4
	countWrite(ctx, len(data))
	return nil
}

func (l *LocalFS) SealRun(ctx context.Context, h RunHandle) error {
	l.Lock()
	run, err := l.getRun(ctx, h)
	if err != nil {
		l.Unlock()
		return err
	}
	if run.sealed {
		l.Unlock()
		return nil
	}
	f := run.w
	run.w = nil
	run.sealed = true
	l.Unlock()

	if err := f.Sync(); err != nil {
		return errors.Wrapf(err, "sync run %s", h)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "close run %s", h)
	}
	// move
	if err := os.Rename(run.tmpPath, run.path); err != nil {
		return errors.Wrapf(err, "seal run %s", h)
	}
	return l.syncDir(l.rootPath)
}

func (l *LocalFS) readFile(ctx context.Context, h RunHandle) (*localRun, *os.File, error) {
	l.RLock()
	run, err := l.getRun(ctx, h)
	if err == nil && !run.sealed {
		err = errRunNotSealed(ctx, h)
	}
	if err != nil {
		l.RUnlock()
		return nil, nil, err
	}
	if run.r != nil {
		l.RUnlock()
		return run, run.r, nil
	}
	l.RUnlock()

	l.Lock()
	defer l.Unlock()
	if run.r == nil {
		f, err := os.Open(run.path)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "open run %s", h)
		}
		run.r = f
	}
	return run, run.r, nil
}

func (l *LocalFS) ReadSegment(ctx context.Context, h RunHandle, idx int) (*batch.Batch, error) {
	run, f, err := l.readFile(ctx, h)
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(run.segments) {
		return nil, errSegmentOutOfRange(ctx, h, idx, len(run.segments))
	}
	seg := run.segments[idx]
	data := make([]byte, seg.size)
	if _, err := f.ReadAt(data, seg.offset); err != nil {
		return nil, errors.Wrapf(err, "read segment %d of run %s", idx, h)
	}
	countRead(ctx, len(data))
	return decodeSegment(data)
}

func (l *LocalFS) OpenForSequentialRead(ctx context.Context, h RunHandle) (RunReader, error) {
	run, _, err := l.readFile(ctx, h)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(run.path)
	if err != nil {
		return nil, errors.Wrapf(err, "open run %s", h)
	}
	return &localRunReader{
		handle: h,
		f:      f,
		r:      bufio.NewReaderSize(f, 256*1024),
		left:   len(run.segments),
	}, nil
}

func (l *LocalFS) SegmentCount(h RunHandle) (int, error) {
	l.RLock()
	defer l.RUnlock()
	run, err := l.getRun(context.TODO(), h)
	if err != nil {
		return 0, err
	}
	return len(run.segments), nil
}

func (l *LocalFS) RemoveRun(ctx context.Context, h RunHandle) error {
	l.Lock()
	run, err := l.getRun(ctx, h)
	if err != nil {
		l.Unlock()
		return err
	}
	delete(l.runs, h.ID)
	l.Unlock()

	countRun(ctx, false)
	return run.remove()
}

func (run *localRun) remove() error {
	if run.w != nil {
		_ = run.w.Close()
		run.w = nil
	}
	if run.r != nil {
		_ = run.r.Close()
		run.r = nil
	}
	path := run.path
	if !run.sealed {
		path = run.tmpPath
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "remove run %s", run.handle)
	}
	return nil
}

func (l *LocalFS) Close() error {
	l.Lock()
	defer l.Unlock()
	var err error
	for id, run := range l.runs {
		err = errors.CombineErrors(err, run.remove())
		delete(l.runs, id)
	}
	for path, f := range l.dirFiles {
		err = errors.CombineErrors(err, f.Close())
		delete(l.dirFiles, path)
	}
	return err
}

func (l *LocalFS) syncDir(nativePath string) error {
	l.Lock()
	f, ok := l.dirFiles[nativePath]
	if !ok {
		var err error
		f, err = os.Open(nativePath)
		if err != nil {
			l.Unlock()
			return err
		}
		l.dirFiles[nativePath] = f
	}
	l.Unlock()
	if err := f.Sync(); err != nil {
		return err
	}
	return nil
}

type localRunReader struct {
	handle RunHandle
	f      *os.File
	r      *bufio.Reader
	left   int
}

func (r *localRunReader) Next(ctx context.Context) (*batch.Batch, error) {
	if r.left == 0 {
		return nil, io.EOF
	}
	var header [4]byte
	if _, err := io.ReadFull(r.r, header[:]); err != nil {
		return nil, errors.Wrapf(err, "read run %s", r.handle)
	}
	data := make([]byte, binary.LittleEndian.Uint32(header[:]))
	if _, err := io.ReadFull(r.r, data); err != nil {
		return nil, errors.Wrapf(err, "read run %s", r.handle)
	}
	r.left--
	countRead(ctx, len(data))
	return decodeSegment(data)
}

func (r *localRunReader) Close() error {
	return r.f.Close()
}
