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

package fileservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegmentCodec(t *testing.T) {
	bat := newTestBatch(t, 100, 1000)
	for _, compress := range []bool{false, true} {
		data, err := encodeSegment(bat, compress)
		assert.Nil(t, err)
		if compress {
			assert.Equal(t, codecLZ4, data[0])
		} else {
			assert.Equal(t, codecRaw, data[0])
		}
		got, err := decodeSegment(data)
		assert.Nil(t, err)
		assert.Equal(t, bat.String(), got.String())
		assert.Equal(t, bat.Attrs, got.Attrs)
	}

	_, err := decodeSegment(nil)
	assert.NotNil(t, err)
	_, err = decodeSegment([]byte{9, 1, 2})
	assert.NotNil(t, err)
	_, err = decodeSegment([]byte{codecRaw, 1, 2})
	assert.NotNil(t, err)
}
