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
	"fmt"

	"github.com/matrixorigin/mergejoin/pkg/container/types"
	"github.com/matrixorigin/mergejoin/pkg/container/vector"
)

// Compare compares rows of vectors registered into numbered slots.
// Nulls are smaller than any value and equal to each other; desc reverses
// the whole order, so nulls come last in a descending order.
type Compare interface {
	Vector() *vector.Vector
	Set(int, *vector.Vector)
	Compare(veci, vecj int, vi, vj int64) int
}

func New(typ types.T, desc bool) Compare {
	switch typ {
	case types.T_bool:
		return newCompare(boolCompare, desc)
	case types.T_int32:
		return newCompare(genericCompare[int32], desc)
	case types.T_int64:
		return newCompare(genericCompare[int64], desc)
	case types.T_uint64:
		return newCompare(genericCompare[uint64], desc)
	case types.T_float64:
		return newCompare(genericCompare[float64], desc)
	case types.T_varchar:
		return newStrCompare(desc)
	}
	panic(fmt.Sprintf("unsupported type %s for compare", typ))
}
