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

	"github.com/matrixorigin/mergejoin/pkg/common/moerr"
)

func TestToken(t *testing.T) {
	tok := NewToken(3, 2, 1)
	require.Equal(t, 3, tok.LeftPos())
	require.Equal(t, 2, tok.RightPos())
	require.Equal(t, 1, tok.RightBatch())
	require.Equal(t, "token(left: 3, right: 1/2)", tok.String())
}

func TestMalformedContinuation(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.RowsInRightBlock = 2
	m := newTestJoin(t, newArgument(Left, All, false, cfg), nil,
		newRightBatch(t, []int64{1, 2, 3}, "r"))
	left := newLeftBatch(t, []int64{1, 2})

	// right batches are [1 2] [3]
	for _, tok := range []*Token{
		NewToken(-1, 0, 0),
		NewToken(2, 0, 0),
		NewToken(0, 0, -1),
		NewToken(0, 0, 3),
		NewToken(0, 1, 2),
		NewToken(0, 2, 0),
		NewToken(0, 1, 1),
		NewToken(0, -1, 0),
	} {
		_, _, err := m.JoinBatch(ctx, left, tok)
		require.True(t, moerr.IsMoErrCode(err, moerr.ErrMalformedContinuation), "%s: %v", tok, err)
	}

	_, _, err := m.JoinBatch(ctx, newLeftBatch(t, nil), NewToken(0, 0, 0))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrMalformedContinuation))

	// the relation is not touched by a bad token
	out, tok, err := m.JoinBatch(ctx, left, NewToken(0, 0, 2))
	require.NoError(t, err)
	require.Nil(t, tok)
	require.Equal(t, []string{"l0,1,null", "l1,2,null"}, rowsOf(out))

	out, _, err = m.JoinBatch(ctx, left, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"l0,1,r0", "l1,2,r1"}, rowsOf(out))
}

func TestJoinLeftValidation(t *testing.T) {
	ctx := context.Background()
	m := newTestJoin(t, newArgument(Inner, All, false, DefaultConfig()), nil,
		newRightBatch(t, []int64{1}, "r"))

	// key column of the wrong type
	_, _, err := m.JoinBatch(ctx, newRightBatch(t, []int64{1}, "r"), nil)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))

	arg := newArgument(Inner, All, false, DefaultConfig())
	arg.LeftKeys[0].Pos = 5
	m = newTestJoin(t, arg, nil)
	_, _, err = m.JoinBatch(ctx, newLeftBatch(t, []int64{1}), nil)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
}

func TestNewErrors(t *testing.T) {
	ctx := context.Background()
	bad := []func(*Argument){
		func(a *Argument) { a.Kind = Kind(9) },
		func(a *Argument) { a.Strictness = Strictness(9) },
		func(a *Argument) { a.LeftKeys = nil },
		func(a *Argument) { a.RightKeys[0].Pos = 2 },
		func(a *Argument) { a.LeftKeys[0].Pos = -1 },
		func(a *Argument) { a.RightKeys[0].Desc = true },
		func(a *Argument) { a.RightAttrs = a.RightAttrs[:1] },
		func(a *Argument) { a.Config.JoinOverflowMode = "spill" },
	}
	for i, fn := range bad {
		arg := newArgument(Inner, All, false, DefaultConfig())
		fn(&arg)
		_, err := New(ctx, arg, nil)
		require.Error(t, err, "case %d", i)
	}
}
