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
	"fmt"
	"math/rand"
	gosort "sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/mergejoin/pkg/container/batch"
	"github.com/matrixorigin/mergejoin/pkg/container/types"
	"github.com/matrixorigin/mergejoin/pkg/container/vector"
	"github.com/matrixorigin/mergejoin/pkg/fileservice"
	"github.com/matrixorigin/mergejoin/pkg/sort"
)

// right batches are (k int64, v varchar), left batches are
// (name varchar, k int64).
var (
	rightAttrs = []string{"k", "v"}
	rightTypes = []types.Type{types.T_int64.ToType(), types.T_varchar.ToType()}
	leftAttrs  = []string{"name", "k"}
	leftTypes  = []types.Type{types.T_varchar.ToType(), types.T_int64.ToType()}
)

const nullKey = int64(-1 << 62)

func newRightBatch(t testing.TB, keys []int64, prefix string) *batch.Batch {
	bat := batch.NewWithSchema(rightAttrs, rightTypes)
	for i, k := range keys {
		require.NoError(t, vector.Append(bat.Vecs[0], k, k == nullKey))
		require.NoError(t, vector.AppendString(bat.Vecs[1], fmt.Sprintf("%s%d", prefix, i), false))
	}
	bat.SetRowCount(len(keys))
	return bat
}

func newLeftBatch(t testing.TB, keys []int64) *batch.Batch {
	bat := batch.NewWithSchema(leftAttrs, leftTypes)
	for i, k := range keys {
		require.NoError(t, vector.AppendString(bat.Vecs[0], fmt.Sprintf("l%d", i), false))
		require.NoError(t, vector.Append(bat.Vecs[1], k, k == nullKey))
	}
	bat.SetRowCount(len(keys))
	return bat
}

func newArgument(kind Kind, strictness Strictness, desc bool, cfg Config) Argument {
	return Argument{
		Kind:       kind,
		Strictness: strictness,
		LeftKeys:   []sort.Key{{Pos: 1, Desc: desc}},
		RightKeys:  []sort.Key{{Pos: 0, Desc: desc}},
		RightAttrs: rightAttrs,
		RightTypes: rightTypes,
		Config:     cfg,
	}
}

func newTestJoin(
	t testing.TB,
	arg Argument,
	storage fileservice.TempStorage,
	rights ...*batch.Batch,
) *MergeJoin {
	ctx := context.Background()
	m, err := New(ctx, arg, storage)
	require.NoError(t, err)
	for _, bat := range rights {
		ok, err := m.AddBatch(ctx, bat, true)
		require.NoError(t, err)
		require.True(t, ok)
	}
	return m
}

// rowsOf renders every row of bat as one string.
func rowsOf(bat *batch.Batch) []string {
	rows := make([]string, 0, bat.RowCount())
	for i := 0; i < bat.RowCount(); i++ {
		cols := make([]string, len(bat.Vecs))
		for j, vec := range bat.Vecs {
			if v := vec.GetAny(i); v == nil {
				cols[j] = "null"
			} else {
				cols[j] = fmt.Sprint(v)
			}
		}
		rows = append(rows, strings.Join(cols, ","))
	}
	return rows
}

// joinRows joins left to the end with the given join and returns the
// output rows and the number of calls.
func joinRows(t testing.TB, m *MergeJoin, left *batch.Batch) ([]string, int) {
	ctx := context.Background()
	var (
		rows  []string
		calls int
		tok   *Token
	)
	for {
		out, next, err := m.JoinBatch(ctx, left, tok)
		require.NoError(t, err)
		calls++
		if next != nil {
			require.Equal(t, m.maxJoinedRows, out.RowCount(), "call %d stopped at %s", calls, next)
		}
		rows = append(rows, rowsOf(out)...)
		if next == nil {
			return rows, calls
		}
		tok = next
		require.Less(t, calls, 100000)
	}
}

type testRow struct {
	key  int64
	text string
}

func keyLess(desc bool) func(a, b int64) bool {
	return func(a, b int64) bool {
		// null first in ascending order, last in descending order
		switch {
		case a == b:
			return false
		case a == nullKey:
			return !desc
		case b == nullKey:
			return desc
		case desc:
			return a > b
		default:
			return a < b
		}
	}
}

// expectedRows is a nested loop version of the join.
func expectedRows(
	kind Kind,
	strictness Strictness,
	desc bool,
	lefts []int64,
	rights [][]int64,
) []string {
	less := keyLess(desc)

	var rs []testRow
	for b, keys := range rights {
		for i, k := range keys {
			rs = append(rs, testRow{key: k, text: fmt.Sprintf("r%d_%d", b, i)})
		}
	}
	gosort.SliceStable(rs, func(i, j int) bool { return less(rs[i].key, rs[j].key) })

	ls := make([]testRow, len(lefts))
	for i, k := range lefts {
		ls[i] = testRow{key: k, text: fmt.Sprintf("l%d", i)}
	}
	gosort.SliceStable(ls, func(i, j int) bool { return less(ls[i].key, ls[j].key) })

	format := func(k int64) string {
		if k == nullKey {
			return "null"
		}
		return fmt.Sprint(k)
	}
	var out []string
	for _, l := range ls {
		var matches []testRow
		if l.key != nullKey {
			for _, r := range rs {
				if r.key == l.key {
					matches = append(matches, r)
				}
			}
		}
		prefix := l.text + "," + format(l.key)
		switch {
		case strictness == Semi:
			if len(matches) > 0 {
				out = append(out, prefix)
			}
		case len(matches) == 0:
			if kind == Left {
				out = append(out, prefix+",null")
			}
		case strictness == Any:
			out = append(out, prefix+","+matches[0].text)
		default:
			for _, r := range matches {
				out = append(out, prefix+","+r.text)
			}
		}
	}
	return out
}

func randomKeys(r *rand.Rand, n int, domain int64) []int64 {
	keys := make([]int64, n)
	for i := range keys {
		if r.Intn(10) == 0 {
			keys[i] = nullKey
		} else {
			keys[i] = r.Int63n(domain)
		}
	}
	return keys
}

var joinModes = []struct {
	kind       Kind
	strictness Strictness
}{
	{Inner, All},
	{Left, All},
	{Inner, Any},
	{Left, Any},
	{Inner, Semi},
	{Left, Semi},
}
