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

	"github.com/matrixorigin/mergejoin/pkg/common/moerr"
	"github.com/matrixorigin/mergejoin/pkg/container/batch"
	"github.com/matrixorigin/mergejoin/pkg/container/vector"
)

// JoinTotals appends the right payload columns to the totals batch of the
// left side. Every row gets the payload of the right totals row, or nulls
// when the right side has no totals.
func (m *MergeJoin) JoinTotals(ctx context.Context, leftTotals *batch.Batch) (*batch.Batch, error) {
	m.RLock()
	defer m.RUnlock()

	right := m.totals
	if right != nil {
		if right.VectorCount() != len(m.rightTypes) {
			return nil, moerr.NewInvalidInput(ctx, "right totals has %d columns, expect %d", right.VectorCount(), len(m.rightTypes))
		}
		if right.IsEmpty() {
			right = nil
		}
	}

	out := leftTotals.Dup()
	for _, pos := range m.payload {
		vec := vector.NewVec(m.rightTypes[pos])
		for i := 0; i < leftTotals.RowCount(); i++ {
			var err error
			if right != nil {
				err = vec.UnionOne(right.Vecs[pos], 0)
			} else {
				err = vector.UnionNull(vec)
			}
			if err != nil {
				return nil, err
			}
		}
		out.Vecs = append(out.Vecs, vec)
		out.Attrs = append(out.Attrs, m.rightAttrs[pos])
	}
	return out, nil
}
