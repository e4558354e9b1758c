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

package types

import (
	"encoding"
	"encoding/binary"
	"unsafe"

	"github.com/matrixorigin/mergejoin/pkg/common/moerr"
)

const (
	TSize int = int(unsafe.Sizeof(Type{}))
)

// EncodeSlice reinterprets v as bytes without copying.
func EncodeSlice[T any](v []T) []byte {
	var t T
	sz := int(unsafe.Sizeof(t))
	if len(v) > 0 {
		return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*sz)[:len(v)*sz]
	}
	return nil
}

// DecodeSliceCopy decodes v into a freshly allocated slice, so the result does
// not alias (and need not be aligned with) the input buffer.
func DecodeSliceCopy[T any](v []byte) []T {
	var t T
	sz := int(unsafe.Sizeof(t))

	if len(v)%sz != 0 {
		panic(moerr.NewInternalErrorNoCtx("decode slice that is not a multiple of element size"))
	}
	rs := make([]T, len(v)/sz)
	copy(EncodeSlice(rs), v)
	return rs
}

func EncodeType(t *Type) []byte {
	buf := make([]byte, 5)
	buf[0] = byte(t.Oid)
	binary.LittleEndian.PutUint32(buf[1:], uint32(t.Size))
	return buf
}

func DecodeType(v []byte) Type {
	return Type{
		Oid:  T(v[0]),
		Size: int32(binary.LittleEndian.Uint32(v[1:])),
	}
}

func EncodeUint32(v uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return buf
}

func DecodeUint32(v []byte) uint32 {
	return binary.LittleEndian.Uint32(v)
}

func EncodeInt64(v int64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(v))
	return buf
}

func DecodeInt64(v []byte) int64 {
	return int64(binary.LittleEndian.Uint64(v))
}

func Encode(v encoding.BinaryMarshaler) ([]byte, error) {
	return v.MarshalBinary()
}

func Decode(data []byte, v encoding.BinaryUnmarshaler) error {
	return v.UnmarshalBinary(data)
}
