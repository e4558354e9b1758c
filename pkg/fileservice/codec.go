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
	"bytes"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/pierrec/lz4/v4"

	"github.com/matrixorigin/mergejoin/pkg/container/batch"
)

const (
	codecRaw byte = 0
	codecLZ4 byte = 1
)

// encodeSegment serializes bat as [codec][payload].
func encodeSegment(bat *batch.Batch, compress bool) ([]byte, error) {
	data, err := bat.MarshalBinary()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if !compress {
		buf.Grow(len(data) + 1)
		buf.WriteByte(codecRaw)
		buf.Write(data)
		return buf.Bytes(), nil
	}
	buf.WriteByte(codecLZ4)
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, errors.Wrap(err, "lz4 compress segment")
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "lz4 compress segment")
	}
	return buf.Bytes(), nil
}

func decodeSegment(data []byte) (*batch.Batch, error) {
	if len(data) == 0 {
		return nil, errors.New("empty segment")
	}
	payload := data[1:]
	switch data[0] {
	case codecRaw:
	case codecLZ4:
		raw, err := io.ReadAll(lz4.NewReader(bytes.NewReader(payload)))
		if err != nil {
			return nil, errors.Wrap(err, "lz4 decompress segment")
		}
		payload = raw
	default:
		return nil, errors.Newf("unknown segment codec %d", data[0])
	}
	bat := new(batch.Batch)
	if err := bat.UnmarshalBinary(payload); err != nil {
		return nil, err
	}
	return bat, nil
}
