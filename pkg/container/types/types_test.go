// Copyright 2021 Matrix Origin
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

package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypeSize(t *testing.T) {
	require.Equal(t, int32(8), T_int64.ToType().Size)
	require.Equal(t, int32(4), T_int32.ToType().Size)
	require.Equal(t, int32(0), T_varchar.ToType().Size)
	require.True(t, T_float64.ToType().IsFixedLen())
	require.False(t, T_varchar.ToType().IsFixedLen())
	require.Equal(t, "BIGINT", T_int64.ToType().String())
}

func TestParseType(t *testing.T) {
	typ, ok := ParseType("bigint")
	require.True(t, ok)
	require.True(t, typ.Eq(T_int64.ToType()))
	_, ok = ParseType("decimal")
	require.False(t, ok)
}

func TestEncodeDecodeSlice(t *testing.T) {
	vs := []int64{1, -2, math.MaxInt64, math.MinInt64}
	data := EncodeSlice(vs)
	require.Equal(t, 32, len(data))
	// copy into an odd offset, the decoder must not rely on alignment
	buf := append([]byte{0}, data...)
	require.Equal(t, vs, DecodeSliceCopy[int64](buf[1:]))

	require.Panics(t, func() { DecodeSliceCopy[int64](buf[:3]) })
}

func TestEncodeType(t *testing.T) {
	typ := T_uint64.ToType()
	require.Equal(t, typ, DecodeType(EncodeType(&typ)))
	require.Equal(t, int64(-7), DecodeInt64(EncodeInt64(-7)))
	require.Equal(t, uint32(7), DecodeUint32(EncodeUint32(7)))
}
