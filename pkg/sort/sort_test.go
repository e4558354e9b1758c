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

package sort

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/mergejoin/pkg/container/batch"
	"github.com/matrixorigin/mergejoin/pkg/container/types"
	"github.com/matrixorigin/mergejoin/pkg/container/vector"
)

func newTestBatch(t *testing.T, a []int64, b []string) *batch.Batch {
	bat := batch.NewWithSchema([]string{"a", "b"}, []types.Type{types.T_int64.ToType(), types.T_varchar.ToType()})
	require.NoError(t, vector.AppendList(bat.Vecs[0], a, nil))
	require.NoError(t, vector.AppendStringList(bat.Vecs[1], b, nil))
	bat.SetRowCount(len(a))
	return bat
}

func TestSortStable(t *testing.T) {
	bat := newTestBatch(t, []int64{2, 1, 2, 1}, []string{"x", "y", "z", "w"})
	require.False(t, IsSorted(bat, []Key{{Pos: 0}}))
	require.Equal(t, []int64{1, 3, 0, 2}, Sels(bat, []Key{{Pos: 0}}))

	SortBatch(bat, []Key{{Pos: 0}})
	require.Equal(t, "[1 1 2 2]", bat.Vecs[0].String())
	require.Equal(t, "[y w x z]", bat.Vecs[1].String())
	require.True(t, IsSorted(bat, []Key{{Pos: 0}}))
}

func TestSortMultiKey(t *testing.T) {
	bat := newTestBatch(t, []int64{2, 1, 2, 1}, []string{"x", "y", "z", "w"})
	SortBatch(bat, []Key{{Pos: 0, Desc: true}, {Pos: 1}})
	require.Equal(t, "[2 2 1 1]", bat.Vecs[0].String())
	require.Equal(t, "[x z w y]", bat.Vecs[1].String())
}
