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

package vector

import (
	"bytes"
	"fmt"

	"github.com/matrixorigin/mergejoin/pkg/common/moerr"
	"github.com/matrixorigin/mergejoin/pkg/container/nulls"
	"github.com/matrixorigin/mergejoin/pkg/container/types"
)

// Vector represent a column
type Vector struct {
	// type represent the type of column
	typ types.Type
	nsp *nulls.Nulls // nulls list

	// col is []T for fixed length types and []string for varchar
	col any

	// area is the byte count of all strings held by a varchar vector
	area int

	length int
}

func NewVec(typ types.Type) *Vector {
	v := &Vector{
		typ: typ,
		nsp: &nulls.Nulls{},
	}
	switch typ.Oid {
	case types.T_bool:
		v.col = []bool{}
	case types.T_int32:
		v.col = []int32{}
	case types.T_int64:
		v.col = []int64{}
	case types.T_uint64:
		v.col = []uint64{}
	case types.T_float64:
		v.col = []float64{}
	case types.T_varchar:
		v.col = []string{}
	default:
		panic(moerr.NewNotSupported(moerr.Context(), "vector of type %s", typ))
	}
	return v
}

func (v *Vector) Length() int {
	return v.length
}

// Size of data, used in memory accounting of the join.
func (v *Vector) Size() int {
	return v.length*int(v.typ.Size) + v.area + nulls.Size(v.nsp)
}

func (v *Vector) GetType() *types.Type {
	return &v.typ
}

func (v *Vector) GetNulls() *nulls.Nulls {
	return v.nsp
}

func (v *Vector) SetNulls(nsp *nulls.Nulls) {
	v.nsp = nsp
}

func (v *Vector) IsNull(i uint64) bool {
	return v.nsp.Contains(i)
}

func (v *Vector) GetString(i int) string {
	return v.col.([]string)[i]
}

// MustFixedCol returns the typed column of a fixed length vector.
func MustFixedCol[T types.FixedSizeT](v *Vector) []T {
	return v.col.([]T)
}

func MustStrCol(v *Vector) []string {
	return v.col.([]string)
}

// GetAny returns the value at row i boxed, nil when null.
func (v *Vector) GetAny(i int) any {
	if v.nsp.Contains(uint64(i)) {
		return nil
	}
	switch col := v.col.(type) {
	case []bool:
		return col[i]
	case []int32:
		return col[i]
	case []int64:
		return col[i]
	case []uint64:
		return col[i]
	case []float64:
		return col[i]
	case []string:
		return col[i]
	}
	return nil
}

func Append[T types.FixedSizeT](vec *Vector, val T, isNull bool) error {
	col, ok := vec.col.([]T)
	if !ok {
		return moerr.NewInternalErrorNoCtx("append %T to vector of type %s", val, vec.typ)
	}
	if isNull {
		var zero T
		val = zero
		nulls.Add(vec.nsp, uint64(vec.length))
	}
	vec.col = append(col, val)
	vec.length++
	return nil
}

func AppendString(vec *Vector, val string, isNull bool) error {
	col, ok := vec.col.([]string)
	if !ok {
		return moerr.NewInternalErrorNoCtx("append string to vector of type %s", vec.typ)
	}
	if isNull {
		val = ""
		nulls.Add(vec.nsp, uint64(vec.length))
	}
	vec.col = append(col, val)
	vec.area += len(val)
	vec.length++
	return nil
}

func AppendList[T types.FixedSizeT](vec *Vector, ws []T, isNulls []bool) error {
	for i, w := range ws {
		if err := Append(vec, w, len(isNulls) > 0 && isNulls[i]); err != nil {
			return err
		}
	}
	return nil
}

func AppendStringList(vec *Vector, ws []string, isNulls []bool) error {
	for i, w := range ws {
		if err := AppendString(vec, w, len(isNulls) > 0 && isNulls[i]); err != nil {
			return err
		}
	}
	return nil
}

// UnionOne appends row sel of w to v.
func (v *Vector) UnionOne(w *Vector, sel int64) error {
	if w.nsp.Contains(uint64(sel)) {
		return UnionNull(v)
	}
	switch v.typ.Oid {
	case types.T_bool:
		return Append(v, MustFixedCol[bool](w)[sel], false)
	case types.T_int32:
		return Append(v, MustFixedCol[int32](w)[sel], false)
	case types.T_int64:
		return Append(v, MustFixedCol[int64](w)[sel], false)
	case types.T_uint64:
		return Append(v, MustFixedCol[uint64](w)[sel], false)
	case types.T_float64:
		return Append(v, MustFixedCol[float64](w)[sel], false)
	case types.T_varchar:
		return AppendString(v, MustStrCol(w)[sel], false)
	default:
		panic(fmt.Sprintf("unexpect type %s for function vector.UnionOne", v.typ))
	}
}

// UnionMulti appends row sel of w to v cnt times.
func (v *Vector) UnionMulti(w *Vector, sel int64, cnt int) error {
	for i := 0; i < cnt; i++ {
		if err := v.UnionOne(w, sel); err != nil {
			return err
		}
	}
	return nil
}

// Union appends the rows sels of w to v.
func (v *Vector) Union(w *Vector, sels []int64) error {
	for _, sel := range sels {
		if err := v.UnionOne(w, sel); err != nil {
			return err
		}
	}
	return nil
}

// UnionRange appends rows [start, end) of w to v.
func (v *Vector) UnionRange(w *Vector, start, end int64) error {
	for sel := start; sel < end; sel++ {
		if err := v.UnionOne(w, sel); err != nil {
			return err
		}
	}
	return nil
}

func UnionNull(v *Vector) error {
	switch v.typ.Oid {
	case types.T_bool:
		return Append(v, false, true)
	case types.T_int32:
		return Append(v, int32(0), true)
	case types.T_int64:
		return Append(v, int64(0), true)
	case types.T_uint64:
		return Append(v, uint64(0), true)
	case types.T_float64:
		return Append(v, float64(0), true)
	case types.T_varchar:
		return AppendString(v, "", true)
	default:
		panic(fmt.Sprintf("unexpect type %s for function vector.UnionNull", v.typ))
	}
}

// Window returns rows [start, end) of v. The result shares nothing that
// an append to it could overwrite.
func (v *Vector) Window(start, end int) *Vector {
	w := &Vector{
		typ:    v.typ,
		nsp:    nulls.Range(v.nsp, uint64(start), uint64(end), uint64(start), &nulls.Nulls{}),
		length: end - start,
	}
	switch col := v.col.(type) {
	case []bool:
		w.col = col[start:end:end]
	case []int32:
		w.col = col[start:end:end]
	case []int64:
		w.col = col[start:end:end]
	case []uint64:
		w.col = col[start:end:end]
	case []float64:
		w.col = col[start:end:end]
	case []string:
		ws := col[start:end:end]
		for _, s := range ws {
			w.area += len(s)
		}
		w.col = ws
	}
	return w
}

// Shuffle reorders v so that row i becomes the old row sels[i].
func (v *Vector) Shuffle(sels []int64) {
	switch v.typ.Oid {
	case types.T_bool:
		shuffleFixed[bool](v, sels)
	case types.T_int32:
		shuffleFixed[int32](v, sels)
	case types.T_int64:
		shuffleFixed[int64](v, sels)
	case types.T_uint64:
		shuffleFixed[uint64](v, sels)
	case types.T_float64:
		shuffleFixed[float64](v, sels)
	case types.T_varchar:
		vs := MustStrCol(v)
		ws := make([]string, len(sels))
		area := 0
		for i, sel := range sels {
			ws[i] = vs[sel]
			area += len(ws[i])
		}
		v.col = ws
		v.area = area
	default:
		panic(fmt.Sprintf("unexpect type %s for function vector.Shuffle", v.typ))
	}
	v.nsp = nulls.Filter(v.nsp, sels)
	v.length = len(sels)
}

func shuffleFixed[T types.FixedSizeT](v *Vector, sels []int64) {
	vs := MustFixedCol[T](v)
	ws := make([]T, len(sels))
	for i, sel := range sels {
		ws[i] = vs[sel]
	}
	v.col = ws
}

func (v *Vector) Dup() *Vector {
	w := v.Window(0, v.length)
	switch col := w.col.(type) {
	case []bool:
		w.col = append([]bool{}, col...)
	case []int32:
		w.col = append([]int32{}, col...)
	case []int64:
		w.col = append([]int64{}, col...)
	case []uint64:
		w.col = append([]uint64{}, col...)
	case []float64:
		w.col = append([]float64{}, col...)
	case []string:
		w.col = append([]string{}, col...)
	}
	return w
}

func (v *Vector) String() string {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i := 0; i < v.length; i++ {
		if i > 0 {
			buf.WriteByte(' ')
		}
		if val := v.GetAny(i); val == nil {
			buf.WriteString("null")
		} else {
			fmt.Fprintf(&buf, "%v", val)
		}
	}
	buf.WriteByte(']')
	return buf.String()
}

func (v *Vector) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer

	{ // write length
		buf.Write(types.EncodeInt64(int64(v.length)))
	}
	{ // write type
		buf.Write(types.EncodeType(&v.typ))
	}
	{ // write nspLen, nsp
		data, err := v.nsp.Show()
		if err != nil {
			return nil, err
		}
		buf.Write(types.EncodeUint32(uint32(len(data))))
		if len(data) > 0 {
			buf.Write(data)
		}
	}
	{ // write col
		switch col := v.col.(type) {
		case []bool:
			buf.Write(types.EncodeSlice(col))
		case []int32:
			buf.Write(types.EncodeSlice(col))
		case []int64:
			buf.Write(types.EncodeSlice(col))
		case []uint64:
			buf.Write(types.EncodeSlice(col))
		case []float64:
			buf.Write(types.EncodeSlice(col))
		case []string:
			for _, s := range col {
				buf.Write(types.EncodeUint32(uint32(len(s))))
				buf.WriteString(s)
			}
		}
	}
	return buf.Bytes(), nil
}

func (v *Vector) UnmarshalBinary(data []byte) error {
	if len(data) < 8+5+4 {
		return moerr.NewUnexpectedEOF(moerr.Context(), "vector header")
	}
	{ // read length
		v.length = int(types.DecodeInt64(data[:8]))
		data = data[8:]
	}
	{ // read typ
		v.typ = types.DecodeType(data[:5])
		data = data[5:]
	}
	{ // read nsp
		v.nsp = &nulls.Nulls{}
		size := types.DecodeUint32(data)
		data = data[4:]
		if size > 0 {
			if int(size) > len(data) {
				return moerr.NewUnexpectedEOF(moerr.Context(), "vector nulls")
			}
			if err := v.nsp.Read(data[:size]); err != nil {
				return err
			}
			data = data[size:]
		}
	}
	{ // read col
		v.area = 0
		if v.typ.Oid == types.T_varchar {
			col := make([]string, v.length)
			for i := range col {
				if len(data) < 4 {
					return moerr.NewUnexpectedEOF(moerr.Context(), "vector varchar")
				}
				n := int(types.DecodeUint32(data))
				data = data[4:]
				if n > len(data) {
					return moerr.NewUnexpectedEOF(moerr.Context(), "vector varchar")
				}
				col[i] = string(data[:n])
				data = data[n:]
				v.area += n
			}
			v.col = col
			return nil
		}
		length := v.length * int(v.typ.Size)
		if length > len(data) {
			return moerr.NewUnexpectedEOF(moerr.Context(), "vector data")
		}
		switch v.typ.Oid {
		case types.T_bool:
			v.col = types.DecodeSliceCopy[bool](data[:length])
		case types.T_int32:
			v.col = types.DecodeSliceCopy[int32](data[:length])
		case types.T_int64:
			v.col = types.DecodeSliceCopy[int64](data[:length])
		case types.T_uint64:
			v.col = types.DecodeSliceCopy[uint64](data[:length])
		case types.T_float64:
			v.col = types.DecodeSliceCopy[float64](data[:length])
		default:
			return moerr.NewNotSupported(moerr.Context(), "decode vector of type %s", v.typ)
		}
	}
	return nil
}
