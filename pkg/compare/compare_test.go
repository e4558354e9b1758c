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

package compare

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/mergejoin/pkg/container/types"
	"github.com/matrixorigin/mergejoin/pkg/container/vector"
)

func TestCompare_Vector(t *testing.T) {
	c := New(types.T_int64, false)
	vec := vector.NewVec(types.T_int64.ToType())
	c.Set(0, vec)
	require.Equal(t, vec, c.Vector())
}

func TestCompare_Set(t *testing.T) {
	c := New(types.T_int32, false).(*compare[int32])
	vec := vector.NewVec(types.T_int32.ToType())
	c.Set(3, vec)
	require.Equal(t, 4, len(c.vs))
	require.Equal(t, vec, c.vs[3])
}

func TestCompare_Compare(t *testing.T) {
	a := vector.NewVec(types.T_int64.ToType())
	require.NoError(t, vector.AppendList(a, []int64{5, 6, 0}, []bool{false, false, true}))
	b := vector.NewVec(types.T_int64.ToType())
	require.NoError(t, vector.AppendList(b, []int64{7, 5, 0}, []bool{false, false, true}))

	asc := New(types.T_int64, false)
	asc.Set(0, a)
	asc.Set(1, b)
	require.Equal(t, -1, asc.Compare(0, 1, 0, 0))
	require.Equal(t, 0, asc.Compare(0, 1, 0, 1))
	require.Equal(t, 1, asc.Compare(0, 1, 1, 1))
	// null is the smallest and equal to null
	require.Equal(t, -1, asc.Compare(0, 1, 2, 1))
	require.Equal(t, 0, asc.Compare(0, 1, 2, 2))

	desc := New(types.T_int64, true)
	desc.Set(0, a)
	desc.Set(1, b)
	require.Equal(t, 1, desc.Compare(0, 1, 0, 0))
	require.Equal(t, 1, desc.Compare(0, 1, 2, 1))
}

func TestCompare_Types(t *testing.T) {
	bools := vector.NewVec(types.T_bool.ToType())
	require.NoError(t, vector.AppendList(bools, []bool{false, true}, nil))
	c := New(types.T_bool, false)
	c.Set(0, bools)
	require.Equal(t, -1, c.Compare(0, 0, 0, 1))

	strs := vector.NewVec(types.T_varchar.ToType())
	require.NoError(t, vector.AppendStringList(strs, []string{"ab", "b"}, nil))
	c = New(types.T_varchar, true)
	c.Set(0, strs)
	require.Equal(t, 1, c.Compare(0, 0, 0, 1))

	floats := vector.NewVec(types.T_float64.ToType())
	require.NoError(t, vector.AppendList(floats, []float64{-0.5, 0.25}, nil))
	c = New(types.T_float64, false)
	c.Set(0, floats)
	require.Equal(t, -1, c.Compare(0, 0, 0, 1))

	require.Panics(t, func() { New(types.T_any, false) })
}
