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

package batch

import (
	"bytes"
	"fmt"

	"github.com/matrixorigin/mergejoin/pkg/common/moerr"
	"github.com/matrixorigin/mergejoin/pkg/container/types"
	"github.com/matrixorigin/mergejoin/pkg/container/vector"
)

func New(attrs []string) *Batch {
	return &Batch{
		Attrs:    attrs,
		Vecs:     make([]*vector.Vector, len(attrs)),
		rowCount: 0,
	}
}

func NewWithSize(n int) *Batch {
	return &Batch{
		Vecs:     make([]*vector.Vector, n),
		rowCount: 0,
	}
}

// NewWithSchema returns an empty batch with one empty vector per type.
func NewWithSchema(attrs []string, typs []types.Type) *Batch {
	bat := New(attrs)
	for i, typ := range typs {
		bat.Vecs[i] = vector.NewVec(typ)
	}
	return bat
}

func (bat *Batch) RowCount() int {
	return bat.rowCount
}

func (bat *Batch) SetRowCount(n int) {
	bat.rowCount = n
}

func (bat *Batch) VectorCount() int {
	return len(bat.Vecs)
}

func (bat *Batch) IsEmpty() bool {
	return bat.rowCount == 0
}

func (bat *Batch) GetVector(pos int32) *vector.Vector {
	return bat.Vecs[pos]
}

func (bat *Batch) SetVector(pos int32, vec *vector.Vector) {
	bat.Vecs[pos] = vec
}

func (bat *Batch) Types() []types.Type {
	typs := make([]types.Type, len(bat.Vecs))
	for i, vec := range bat.Vecs {
		typs[i] = *vec.GetType()
	}
	return typs
}

func (bat *Batch) Size() int {
	var size int

	for _, vec := range bat.Vecs {
		size += vec.Size()
	}
	return size
}

// Window returns rows [start, end) of the batch.
func (bat *Batch) Window(start, end int) *Batch {
	rbat := NewWithSize(len(bat.Vecs))
	rbat.Attrs = bat.Attrs
	for i, vec := range bat.Vecs {
		rbat.Vecs[i] = vec.Window(start, end)
	}
	rbat.rowCount = end - start
	return rbat
}

// Shuffle reorders the rows so that row i becomes the old row sels[i].
func (bat *Batch) Shuffle(sels []int64) {
	for _, vec := range bat.Vecs {
		vec.Shuffle(sels)
	}
	bat.rowCount = len(sels)
}

func (bat *Batch) Dup() *Batch {
	rbat := NewWithSize(len(bat.Vecs))
	rbat.Attrs = append([]string{}, bat.Attrs...)
	for i, vec := range bat.Vecs {
		rbat.Vecs[i] = vec.Dup()
	}
	rbat.rowCount = bat.rowCount
	return rbat
}

// UnionOne appends row sel of src, src must have the same schema.
func (bat *Batch) UnionOne(src *Batch, sel int64) error {
	for i, vec := range bat.Vecs {
		if err := vec.UnionOne(src.Vecs[i], sel); err != nil {
			return err
		}
	}
	bat.rowCount++
	return nil
}

// Append appends all rows of src, src must have the same schema.
func (bat *Batch) Append(src *Batch) error {
	if len(bat.Vecs) != len(src.Vecs) {
		return moerr.NewInternalErrorNoCtx("append batch with %d columns to batch with %d columns", len(src.Vecs), len(bat.Vecs))
	}
	for i, vec := range bat.Vecs {
		if err := vec.UnionRange(src.Vecs[i], 0, int64(src.rowCount)); err != nil {
			return err
		}
	}
	bat.rowCount += src.rowCount
	return nil
}

func (bat *Batch) String() string {
	var buf bytes.Buffer

	for i, vec := range bat.Vecs {
		if i < len(bat.Attrs) {
			buf.WriteString(fmt.Sprintf("%s(%d): %s\n", bat.Attrs[i], i, vec))
		} else {
			buf.WriteString(fmt.Sprintf("%d : %s\n", i, vec))
		}
	}
	return buf.String()
}

func (bat *Batch) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer

	buf.Write(types.EncodeInt64(int64(bat.rowCount)))
	buf.Write(types.EncodeUint32(uint32(len(bat.Vecs))))
	for _, vec := range bat.Vecs {
		data, err := vec.MarshalBinary()
		if err != nil {
			return nil, err
		}
		buf.Write(types.EncodeUint32(uint32(len(data))))
		buf.Write(data)
	}
	buf.Write(types.EncodeUint32(uint32(len(bat.Attrs))))
	for _, attr := range bat.Attrs {
		buf.Write(types.EncodeUint32(uint32(len(attr))))
		buf.WriteString(attr)
	}
	return buf.Bytes(), nil
}

func (bat *Batch) UnmarshalBinary(data []byte) error {
	eof := func(what string) error {
		return moerr.NewUnexpectedEOF(moerr.Context(), "batch "+what)
	}
	if len(data) < 12 {
		return eof("header")
	}
	bat.rowCount = int(types.DecodeInt64(data[:8]))
	n := int(types.DecodeUint32(data[8:]))
	data = data[12:]
	bat.Vecs = make([]*vector.Vector, n)
	for i := range bat.Vecs {
		if len(data) < 4 {
			return eof("vector")
		}
		size := int(types.DecodeUint32(data))
		data = data[4:]
		if size > len(data) {
			return eof("vector")
		}
		bat.Vecs[i] = new(vector.Vector)
		if err := bat.Vecs[i].UnmarshalBinary(data[:size]); err != nil {
			return err
		}
		data = data[size:]
	}
	if len(data) < 4 {
		return eof("attrs")
	}
	n = int(types.DecodeUint32(data))
	data = data[4:]
	bat.Attrs = make([]string, n)
	for i := range bat.Attrs {
		if len(data) < 4 {
			return eof("attrs")
		}
		size := int(types.DecodeUint32(data))
		data = data[4:]
		if size > len(data) {
			return eof("attrs")
		}
		bat.Attrs[i] = string(data[:size])
		data = data[size:]
	}
	return nil
}
