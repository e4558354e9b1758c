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

	"github.com/matrixorigin/mergejoin/pkg/container/batch"
)

// RunHandle identifies one sorted run on a TempStorage.
type RunHandle struct {
	ID   uint64
	Name string
}

func (h RunHandle) String() string {
	return fmt.Sprintf("%s#%d", h.Name, h.ID)
}

// TempStorage stores sorted runs of batches for the lifetime of one join.
// A run is written segment by segment, sealed, and then only read.
type TempStorage interface {
	// Name is name of the storage backend
	Name() string
	// CreateRun creates an empty run open for appending
	CreateRun(ctx context.Context) (RunHandle, error)
	// AppendSorted appends bat as the next segment of run.
	// The caller guarantees the run stays sorted end to end.
	AppendSorted(ctx context.Context, run RunHandle, bat *batch.Batch) error
	// SealRun makes the run durable and readable, no append is allowed after it
	SealRun(ctx context.Context, run RunHandle) error
	// OpenForSequentialRead returns a reader over all segments of a sealed run
	OpenForSequentialRead(ctx context.Context, run RunHandle) (RunReader, error)
	// ReadSegment reads the idx-th segment of a sealed run
	ReadSegment(ctx context.Context, run RunHandle, idx int) (*batch.Batch, error)
	// SegmentCount returns the number of segments appended to run
	SegmentCount(run RunHandle) (int, error)
	// RemoveRun drops the run and its data
	RemoveRun(ctx context.Context, run RunHandle) error
	// Close removes every run and releases the storage
	Close() error
}

// RunReader reads the segments of a run in order.
// Next returns io.EOF after the last segment.
type RunReader interface {
	Next(ctx context.Context) (*batch.Batch, error)
	Close() error
}

// runMeta is the bookkeeping shared by the backends.
type runMeta struct {
	handle   RunHandle
	segments []segmentInfo
	sealed   bool
}

type segmentInfo struct {
	offset int64
	size   int64
}

// newRunName names a run, tests stub it for stable names.
var newRunName = func(id uint64) string {
	return fmt.Sprintf("run-%06d", id)
}
