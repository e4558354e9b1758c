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
	"fmt"

	"github.com/matrixorigin/mergejoin/pkg/container/types"
	"github.com/matrixorigin/mergejoin/pkg/fileservice"
	"github.com/matrixorigin/mergejoin/pkg/sort"
)

type Kind int

const (
	Inner Kind = iota
	Left
)

func (k Kind) String() string {
	switch k {
	case Inner:
		return "INNER"
	case Left:
		return "LEFT"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

type Strictness int

const (
	All Strictness = iota
	Any
	Semi
)

func (s Strictness) String() string {
	switch s {
	case All:
		return "ALL"
	case Any:
		return "ANY"
	case Semi:
		return "SEMI"
	}
	return fmt.Sprintf("Strictness(%d)", int(s))
}

// Argument describes one merge join.
type Argument struct {
	Kind       Kind
	Strictness Strictness
	// LeftKeys and RightKeys are the join keys of both sides, pairwise
	// with the same type and direction.
	LeftKeys  []sort.Key
	RightKeys []sort.Key
	// RightAttrs and RightTypes are the schema of the right relation.
	RightAttrs []string
	RightTypes []types.Type

	Config Config
}

// SizeLimits bounds the right relation kept in memory.
type SizeLimits struct {
	MaxRows  int64
	MaxBytes int64
	// OverflowIsFatal makes an overflow fail with ErrLimitExceeded
	// instead of spilling or refusing the batch.
	OverflowIsFatal bool
}

func (l SizeLimits) hasLimits() bool {
	return l.MaxRows > 0 || l.MaxBytes > 0
}

// exceeded checks rows and bytes against the limits. Bytes take precedence,
// with only a row limit the byte budget is MaxRows * observed bytes per row,
// which bytes exceed exactly when rows exceed MaxRows.
func (l SizeLimits) exceeded(rows, bytes int64) bool {
	if l.MaxBytes > 0 {
		return bytes > l.MaxBytes
	}
	if l.MaxRows > 0 {
		return bytes > 0 && rows > l.MaxRows
	}
	return false
}

// Token marks where JoinBatch stopped on a left batch. It is only valid
// for the same left batch and join.
type Token struct {
	leftPos    int
	rightPos   int
	rightBatch int
}

func NewToken(leftPos, rightPos, rightBatch int) *Token {
	return &Token{
		leftPos:    leftPos,
		rightPos:   rightPos,
		rightBatch: rightBatch,
	}
}

func (t *Token) LeftPos() int {
	return t.leftPos
}

func (t *Token) RightPos() int {
	return t.rightPos
}

func (t *Token) RightBatch() int {
	return t.rightBatch
}

func (t *Token) String() string {
	return fmt.Sprintf("token(left: %d, right: %d/%d)", t.leftPos, t.rightBatch, t.rightPos)
}

// Stats describes the right relation.
type Stats struct {
	Rows         int64
	Bytes        int64
	Blocks       int
	Runs         int
	Spilled      bool
	CacheHits    int64
	CacheMisses  int64
	DistinctKeys uint64
	// IO counts the temp storage traffic of the join
	IO fileservice.Counter
}
