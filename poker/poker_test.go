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

package poker

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func repeat(b byte, n int) []byte {
	return bytes.Repeat([]byte{b}, n)
}

func generate(n int, f func(i int) byte) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = f(i)
	}
	return buf
}

func TestCheckBufferLength(t *testing.T) {
	t.Run("Too Short", func(t *testing.T) {
		_, err := CheckBuffer(repeat(0, MinLen-1))
		assert.ErrorIs(t, err, ErrTooShort)
		assert.True(t, IsLengthError(err))
	})

	t.Run("Too Long", func(t *testing.T) {
		_, err := CheckBuffer(repeat(0, MaxLen+1))
		assert.ErrorIs(t, err, ErrTooLong)
		assert.True(t, IsLengthError(err))
	})

	t.Run("Minimum Length", func(t *testing.T) {
		_, err := CheckBuffer(repeat(0x42, MinLen))
		assert.NoError(t, err)
	})

	t.Run("Maximum Length", func(t *testing.T) {
		res, err := CheckBuffer(repeat(0, MaxLen))
		assert.NoError(t, err)
		assert.Equal(t, ResultBadRandomness, res)
	})

	t.Run("Error Message", func(t *testing.T) {
		assert.EqualError(t, ErrTooShort, "buffer too short (minimum 16 bytes)")
		assert.EqualError(t, ErrTooLong, "buffer too long (maximum 32768 bytes)")
		assert.False(t, IsLengthError(errors.New("other")))
	})
}

func TestCheckBufferKnownBad(t *testing.T) {
	testCases := []struct {
		name string
		buf  []byte
	}{
		{name: "all zeros", buf: repeat(0x00, 64)},
		{name: "all ones", buf: repeat(0xFF, 64)},
		{name: "single repeating byte", buf: repeat(0x42, 256)},
		{name: "alternating pattern", buf: generate(128, func(i int) byte {
			if i%2 == 0 {
				return 0xAA
			}
			return 0x55
		})},
		{name: "low nibble always zero", buf: generate(64, func(i int) byte { return byte(i%16) << 4 })},
		{name: "high nibble always zero", buf: generate(64, func(i int) byte { return byte(i % 16) })},
		{name: "missing nibble values", buf: generate(256, func(i int) byte {
			v := byte(i % 8)
			return v<<4 | v
		})},
		{name: "repeating short sequence", buf: bytes.Repeat([]byte{0x12, 0x34, 0x56, 0x78}, 64)},
		{name: "even bytes only", buf: generate(128, func(i int) byte { return byte(i * 2) })},
		{name: "odd bytes only", buf: generate(128, func(i int) byte { return byte(i*2 + 1) })},
		{name: "high bit always set", buf: generate(256, func(i int) byte { return byte(i) | 0x80 })},
		{name: "high bit always clear", buf: generate(256, func(i int) byte { return byte(i) & 0x7F })},
		{name: "every other bit cleared", buf: repeat(0xAA, 128)},
		{name: "every other bit set", buf: repeat(0x55, 128)},
		{name: "short prefix then zeros", buf: append([]byte{1, 2, 3, 4}, make([]byte, 28)...)},
		{name: "small counter", buf: generate(32, func(i int) byte { return byte(i + 1) })},
		{name: "ascii printable only", buf: generate(64, func(i int) byte { return 0x20 + byte((i*3)%95) })},
		{name: "incrementing pattern", buf: generate(64, func(i int) byte { return byte(i) })},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := CheckBuffer(tc.buf)
			assert.NoError(t, err)
			assert.Equal(t, ResultBadRandomness, res)
		})
	}
}

// A flat nibble histogram passes even when the source is fully predictable.
func TestCheckBufferDistributionOnly(t *testing.T) {
	t.Run("full counter", func(t *testing.T) {
		res, err := CheckBuffer(generate(256, func(i int) byte { return byte(i) }))
		assert.NoError(t, err)
		assert.Equal(t, ResultOK, res)
	})

	t.Run("poor lcg", func(t *testing.T) {
		state := byte(1)
		buf := generate(256, func(int) byte {
			state = state*5 + 3
			return state
		})
		res, err := CheckBuffer(buf)
		assert.NoError(t, err)
		assert.Equal(t, ResultOK, res)
	})
}

func TestContext(t *testing.T) {
	t.Run("Streaming Biased Data", func(t *testing.T) {
		c := NewContext()
		for i := 0; i < 32; i++ {
			assert.NoError(t, c.Add(0x00))
		}
		res, err := c.Finish()
		assert.NoError(t, err)
		assert.Equal(t, ResultBadRandomness, res)
	})

	t.Run("Too Long", func(t *testing.T) {
		c := NewContext()
		for i := 0; i < MaxLen; i++ {
			assert.NoError(t, c.Add(0x42))
		}
		assert.ErrorIs(t, c.Add(0x42), ErrTooLong)
		assert.Equal(t, MaxLen, c.Len())
	})

	t.Run("Too Short", func(t *testing.T) {
		c := NewContext()
		_, err := c.Finish()
		assert.ErrorIs(t, err, ErrTooShort)

		assert.NoError(t, c.AddBytes(repeat(0x11, 7)))
		_, err = c.Statistic()
		assert.ErrorIs(t, err, ErrTooShort)

		assert.NoError(t, c.Add(0x11))
		_, err = c.Statistic()
		assert.NoError(t, err)
	})

	t.Run("Len And IsEmpty", func(t *testing.T) {
		var c Context
		assert.Equal(t, 0, c.Len())
		assert.True(t, c.IsEmpty())

		assert.NoError(t, c.Add(0x42))
		assert.Equal(t, 1, c.Len())
		assert.False(t, c.IsEmpty())

		assert.NoError(t, c.Add(0x43))
		assert.Equal(t, 2, c.Len())
	})

	t.Run("Equality", func(t *testing.T) {
		var c1, c2 Context
		assert.Equal(t, c1, c2)

		assert.NoError(t, c1.Add(0x42))
		assert.NoError(t, c2.Add(0x42))
		assert.True(t, c1 == c2)

		assert.NoError(t, c1.Add(0x43))
		assert.False(t, c1 == c2)
	})

	t.Run("Reset", func(t *testing.T) {
		c := NewContext()
		assert.NoError(t, c.AddBytes(repeat(0xAB, 40)))
		c.Reset()
		assert.True(t, c.IsEmpty())
		assert.Equal(t, [NumBins]uint32{}, c.Histogram())
	})

	t.Run("Histogram", func(t *testing.T) {
		c := NewContext()
		assert.NoError(t, c.AddBytes([]byte{0xA5, 0xAA, 0x05}))
		h := c.Histogram()
		assert.Equal(t, uint32(3), h[0xA])
		assert.Equal(t, uint32(2), h[0x5])
		assert.Equal(t, uint32(1), h[0x0])
	})

	t.Run("Write", func(t *testing.T) {
		c := NewContext()
		n, err := c.Write(repeat(0xAA, 32))
		assert.NoError(t, err)
		assert.Equal(t, 32, n)

		full := NewContext()
		assert.NoError(t, full.AddBytes(repeat(0, MaxLen-3)))
		n, err = full.Write(repeat(0, 10))
		assert.ErrorIs(t, err, ErrTooLong)
		assert.Equal(t, 3, n)
	})

	t.Run("Finish Is Repeatable", func(t *testing.T) {
		c := NewContext()
		assert.NoError(t, c.AddBytes(repeat(0xAA, 32)))
		first, err := c.Finish()
		assert.NoError(t, err)
		second, err := c.Finish()
		assert.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, 32, c.Len())
	})
}

func TestStatistic(t *testing.T) {
	testCases := []struct {
		name string
		buf  []byte
		want float64
	}{
		{name: "flat", buf: generate(256, func(i int) byte { return byte(i) }), want: 0},
		{name: "all zeros", buf: repeat(0, 64), want: 1920},
		{name: "even bytes", buf: generate(128, func(i int) byte { return byte(i * 2) }), want: 64},
		{name: "short prefix then zeros", buf: append([]byte{1, 2, 3, 4}, make([]byte, 28)...), want: 837},
		{name: "small counter", buf: generate(32, func(i int) byte { return byte(i + 1) }), want: 104.5},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewContext()
			assert.NoError(t, c.AddBytes(tc.buf))
			got, err := c.Statistic()
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPValue(t *testing.T) {
	c := NewContext()
	assert.NoError(t, c.AddBytes(generate(256, func(i int) byte { return byte(i) })))
	p, err := c.PValue()
	assert.NoError(t, err)
	assert.Equal(t, 1.0, p)

	c.Reset()
	assert.NoError(t, c.AddBytes(repeat(0, 64)))
	p, err = c.PValue()
	assert.NoError(t, err)
	assert.Less(t, p, 1e-10)

	c.Reset()
	_, err = c.PValue()
	assert.ErrorIs(t, err, ErrTooShort)
}

func TestCheckReader(t *testing.T) {
	t.Run("Bad", func(t *testing.T) {
		res, err := CheckReader(bytes.NewReader(repeat(0, 64)))
		assert.NoError(t, err)
		assert.Equal(t, ResultBadRandomness, res)
	})

	t.Run("Flat", func(t *testing.T) {
		res, err := CheckReader(bytes.NewReader(generate(512, func(i int) byte { return byte(i) })))
		assert.NoError(t, err)
		assert.Equal(t, ResultOK, res)
	})

	t.Run("Too Short", func(t *testing.T) {
		_, err := CheckReader(strings.NewReader("short"))
		assert.ErrorIs(t, err, ErrTooShort)
	})

	t.Run("Too Long", func(t *testing.T) {
		_, err := CheckReader(bytes.NewReader(repeat(0, MaxLen+1)))
		assert.ErrorIs(t, err, ErrTooLong)
	})
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "ok", ResultOK.String())
	assert.Equal(t, "bad randomness", ResultBadRandomness.String())
	assert.Equal(t, "Result(7)", Result(7).String())
}

func TestFalsePositiveRate(t *testing.T) {
	assert.InEpsilon(t, 1.2041198561352218e-05, FalsePositiveRate(), 1e-9)
}
