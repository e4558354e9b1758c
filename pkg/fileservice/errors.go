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

	"github.com/matrixorigin/mergejoin/pkg/common/moerr"
)

func errRunNotFound(ctx context.Context, run RunHandle) error {
	return moerr.NewFileNotFound(ctx, run.String())
}

func errRunSealed(ctx context.Context, run RunHandle) error {
	return moerr.NewInvalidState(ctx, "run %s is sealed", run)
}

func errRunNotSealed(ctx context.Context, run RunHandle) error {
	return moerr.NewInvalidState(ctx, "run %s is not sealed", run)
}

func errSegmentOutOfRange(ctx context.Context, run RunHandle, idx int, n int) error {
	return moerr.NewInvalidInput(ctx, "segment %d of run %s out of range [0, %d)", idx, run, n)
}
