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
	"fmt"

	"golang.org/x/exp/constraints"
)

type T uint8

const (
	T_any T = 0

	T_bool T = 10

	T_int32 T = 22
	T_int64 T = 23

	T_uint64 T = 27

	T_float64 T = 31

	T_varchar T = 61
)

// Type is the type of a column.
type Type struct {
	Oid T
	// Size is the byte width of a fixed size element, 0 for varlena types
	Size int32
}

// FixedSizeT is the set of go types stored as flat slices in a vector.
type FixedSizeT interface {
	bool | int32 | int64 | uint64 | float64
}

// OrderedT is the set of go types with a natural order usable as join keys.
type OrderedT interface {
	constraints.Integer | constraints.Float | ~string
}

var Types = map[string]T{
	"bool":    T_bool,
	"int":     T_int32,
	"integer": T_int32,
	"bigint":  T_int64,
	"ubigint": T_uint64,
	"double":  T_float64,
	"varchar": T_varchar,
}

func New(oid T) Type {
	return Type{Oid: oid, Size: int32(TypeSize(oid))}
}

func (t T) ToType() Type {
	return New(t)
}

func (t Type) String() string {
	return t.Oid.String()
}

func (t Type) Eq(b Type) bool {
	return t.Oid == b.Oid && t.Size == b.Size
}

func (t Type) IsFixedLen() bool {
	return t.Oid.FixedLength() > 0
}

func (t T) String() string {
	switch t {
	case T_bool:
		return "BOOL"
	case T_int32:
		return "INT"
	case T_int64:
		return "BIGINT"
	case T_uint64:
		return "BIGINT UNSIGNED"
	case T_float64:
		return "DOUBLE"
	case T_varchar:
		return "VARCHAR"
	case T_any:
		return "ANY"
	}
	return fmt.Sprintf("unexpected type: %d", t)
}

// FixedLength returns the element width, -1 for varlena types and 0 for
// unknown ones.
func (t T) FixedLength() int {
	switch t {
	case T_bool:
		return 1
	case T_int32:
		return 4
	case T_int64, T_uint64, T_float64:
		return 8
	case T_varchar:
		return -1
	}
	return 0
}

// TypeSize returns the byte width used in the Type.Size field.
func TypeSize(oid T) int {
	if n := oid.FixedLength(); n > 0 {
		return n
	}
	return 0
}

// ParseType resolves a type name as written in configs and csv headers.
func ParseType(name string) (Type, bool) {
	oid, ok := Types[name]
	if !ok {
		return Type{}, false
	}
	return New(oid), true
}
