// Copyright 2021 - 2022 Matrix Origin
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

package moerr

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsMoErrCode(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		err      error
		code     uint16
		expected bool
	}{
		{name: "nil is ok", err: nil, code: Ok, expected: true},
		{name: "nil is not internal", err: nil, code: ErrInternal, expected: false},
		{name: "limit", err: NewLimitExceeded(ctx, "rows %d", 10), code: ErrLimitExceeded, expected: true},
		{name: "continuation", err: NewMalformedContinuation(ctx, "bad"), code: ErrMalformedContinuation, expected: true},
		{name: "wrong code", err: NewInvalidInput(ctx, "x"), code: ErrBadConfig, expected: false},
		{name: "go error", err: errors.New("x"), code: ErrInternal, expected: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, IsMoErrCode(tt.err, tt.code))
		})
	}
}

func TestSpillIOKeepsCause(t *testing.T) {
	ctx := context.Background()
	err := NewSpillIO(ctx, "append", os.ErrPermission)
	require.True(t, IsMoErrCode(err, ErrSpillIO))
	require.True(t, errors.Is(err, os.ErrPermission))
	require.Contains(t, err.Error(), "append")

	// wrapping twice keeps the first error
	again := NewSpillIO(ctx, "read", err)
	require.Same(t, err, again)
}

func TestConvertGoError(t *testing.T) {
	ctx := context.Background()
	require.Nil(t, ConvertGoError(ctx, nil))
	require.True(t, IsMoErrCode(ConvertGoError(ctx, io.EOF), ErrUnexpectedEOF))
	require.True(t, IsMoErrCode(ConvertGoError(ctx, errors.New("x")), ErrInternal))

	me := NewBadConfig(ctx, "fan in %d", 1)
	require.Same(t, me, ConvertGoError(ctx, me))
	require.Equal(t, "invalid configuration: fan in 1", me.Error())
}

func TestConvertPanicError(t *testing.T) {
	ctx := context.Background()
	me := NewInvalidState(ctx, "closed")
	require.Same(t, me, ConvertPanicError(ctx, me))
	require.True(t, IsMoErrCode(ConvertPanicError(ctx, "boom"), ErrInternal))
}

func TestNewErrorPanicsOnUnknownCode(t *testing.T) {
	require.Panics(t, func() {
		_ = newError(context.Background(), 12345)
	})
}
