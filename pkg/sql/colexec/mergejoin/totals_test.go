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

package mergejoin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTotals(t *testing.T) {
	ctx := context.Background()
	m := newTestJoin(t, newArgument(Left, All, false, DefaultConfig()), nil)
	require.False(t, m.HasTotals())
	require.Nil(t, m.GetTotals())

	leftTotals := newLeftBatch(t, []int64{100})
	out, err := m.JoinTotals(ctx, leftTotals)
	require.NoError(t, err)
	require.Equal(t, []string{"l0,100,null"}, rowsOf(out))
	require.Equal(t, []string{"name", "k", "v"}, out.Attrs)

	totals := newRightBatch(t, []int64{42}, "total")
	m.SetTotals(totals)
	require.True(t, m.HasTotals())
	require.Same(t, totals, m.GetTotals())

	out, err = m.JoinTotals(ctx, leftTotals)
	require.NoError(t, err)
	require.Equal(t, []string{"l0,100,total0"}, rowsOf(out))
	// the left totals are not modified
	require.Equal(t, 2, leftTotals.VectorCount())

	m.SetTotals(newRightBatch(t, nil, "x"))
	out, err = m.JoinTotals(ctx, leftTotals)
	require.NoError(t, err)
	require.Equal(t, []string{"l0,100,null"}, rowsOf(out))
}
