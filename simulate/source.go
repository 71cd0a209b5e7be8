/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package simulate

import (
	"encoding/binary"
	"io"

	"github.com/twmb/murmur3"
)

const blockSize = 16

// hashSource produces a deterministic byte stream: block i is the 128-bit
// murmur3 digest of the little-endian counter i under the source seed.
type hashSource struct {
	seed    uint64
	counter uint64
	block   [blockSize]byte
	pos     int
}

// NewHashSource returns an endless reader of well-mixed bytes derived from seed.
// Equal seeds produce equal streams.
func NewHashSource(seed uint64) io.Reader {
	return &hashSource{seed: seed, pos: blockSize}
}

func (s *hashSource) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if s.pos == blockSize {
			s.refill()
		}
		c := copy(p[n:], s.block[s.pos:])
		s.pos += c
		n += c
	}
	return n, nil
}

func (s *hashSource) refill() {
	var scratch [8]byte
	binary.LittleEndian.PutUint64(scratch[:], s.counter)
	h1, h2 := murmur3.SeedSum128(s.seed, s.seed, scratch[:])
	binary.LittleEndian.PutUint64(s.block[:8], h1)
	binary.LittleEndian.PutUint64(s.block[8:], h2)
	s.counter++
	s.pos = 0
}

// maskedSource models a faulty driver that clears bits in some of the bytes.
type maskedSource struct {
	r      io.Reader
	mask   byte
	stride int
	offset int
}

// NewMaskedSource ANDs every stride-th byte read from r with mask, starting with
// the first one. A stride of 2 and a mask of 0xEF clears bit 4 of the even bytes.
func NewMaskedSource(r io.Reader, mask byte, stride int) io.Reader {
	return &maskedSource{r: r, mask: mask, stride: stride}
}

func (s *maskedSource) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	for i := 0; i < n; i++ {
		if s.stride > 0 && (s.offset+i)%s.stride == 0 {
			p[i] &= s.mask
		}
	}
	s.offset += n
	return n, err
}
