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

package nulls

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNulls(t *testing.T) {
	var n Nulls
	require.False(t, n.Any())
	require.Equal(t, "[]", String(&n))

	Add(&n, 1, 3)
	AddRange(&n, 10, 12)
	require.True(t, n.Any())
	require.Equal(t, 4, n.Count())
	require.True(t, n.Contains(11))
	require.False(t, n.Contains(12))
	require.Equal(t, []uint64{1, 3, 10, 11}, n.ToArray())

	Del(&n, 3)
	require.Equal(t, []uint64{1, 10, 11}, n.ToArray())

	c := n.Clone()
	Add(c, 5)
	require.False(t, n.Contains(5))
}

func TestRangeAndFilter(t *testing.T) {
	var n Nulls
	Add(&n, 2, 5, 7)

	m := Range(&n, 4, 8, 4, &Nulls{})
	require.Equal(t, []uint64{1, 3}, m.ToArray())

	f := Filter(&n, []int64{7, 0, 2})
	require.Equal(t, []uint64{0, 2}, f.ToArray())

	var r Nulls
	Or(&n, f, &r)
	require.Equal(t, []uint64{0, 2, 5, 7}, r.ToArray())
}

func TestShowRead(t *testing.T) {
	var n Nulls
	data, err := n.Show()
	require.NoError(t, err)
	require.Nil(t, data)

	Add(&n, 0, 100, 65536)
	data, err = n.Show()
	require.NoError(t, err)

	var m Nulls
	require.NoError(t, m.Read(data))
	require.Equal(t, n.ToArray(), m.ToArray())

	require.NoError(t, m.Read(nil))
	require.False(t, m.Any())
}
