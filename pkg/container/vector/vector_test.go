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

package vector

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/mergejoin/pkg/container/types"
)

func TestAppendAndUnion(t *testing.T) {
	v := NewVec(types.T_int64.ToType())
	require.NoError(t, AppendList(v, []int64{1, 2, 3}, []bool{false, true, false}))
	require.Equal(t, 3, v.Length())
	require.True(t, v.IsNull(1))
	require.Equal(t, "[1 null 3]", v.String())

	w := NewVec(types.T_int64.ToType())
	require.NoError(t, w.UnionOne(v, 2))
	require.NoError(t, w.UnionOne(v, 1))
	require.NoError(t, w.UnionMulti(v, 0, 2))
	require.NoError(t, UnionNull(w))
	require.Equal(t, "[3 null 1 1 null]", w.String())

	require.Error(t, AppendString(v, "x", false))
	require.Error(t, Append(v, int32(1), false))
}

func TestWindowDoesNotAlias(t *testing.T) {
	v := NewVec(types.T_int32.ToType())
	require.NoError(t, AppendList(v, []int32{1, 2, 3, 4}, []bool{false, false, true, false}))

	w := v.Window(1, 3)
	require.Equal(t, "[2 null]", w.String())
	require.NoError(t, Append(w, int32(9), false))
	require.Equal(t, "[1 2 null 4]", v.String())
	require.Equal(t, "[2 null 9]", w.String())
}

func TestShuffleAndDup(t *testing.T) {
	v := NewVec(types.T_varchar.ToType())
	require.NoError(t, AppendStringList(v, []string{"a", "bb", "ccc"}, []bool{false, true, false}))
	size := v.Size()

	d := v.Dup()
	d.Shuffle([]int64{2, 1, 0, 2})
	require.Equal(t, "[ccc null a ccc]", d.String())
	require.Equal(t, "[a null ccc]", v.String())
	require.Equal(t, size, v.Size())
}

func TestMarshal(t *testing.T) {
	vecs := []*Vector{
		NewVec(types.T_bool.ToType()),
		NewVec(types.T_int32.ToType()),
		NewVec(types.T_int64.ToType()),
		NewVec(types.T_uint64.ToType()),
		NewVec(types.T_float64.ToType()),
		NewVec(types.T_varchar.ToType()),
	}
	isNulls := []bool{false, true, false}
	require.NoError(t, AppendList(vecs[0], []bool{true, false, true}, isNulls))
	require.NoError(t, AppendList(vecs[1], []int32{-1, 0, 1}, isNulls))
	require.NoError(t, AppendList(vecs[2], []int64{-1, 0, 1}, isNulls))
	require.NoError(t, AppendList(vecs[3], []uint64{1, 0, 2}, isNulls))
	require.NoError(t, AppendList(vecs[4], []float64{0.5, 0, -2.5}, isNulls))
	require.NoError(t, AppendStringList(vecs[5], []string{"x", "", "hello"}, isNulls))

	for _, v := range vecs {
		data, err := v.MarshalBinary()
		require.NoError(t, err)
		w := new(Vector)
		require.NoError(t, w.UnmarshalBinary(data))
		require.Equal(t, v.String(), w.String())
		require.True(t, v.GetType().Eq(*w.GetType()))

		require.Error(t, new(Vector).UnmarshalBinary(data[:len(data)-1]))
	}
}
