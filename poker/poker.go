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

// Package poker checks whether a byte buffer "looks random" with a chi-squared
// goodness-of-fit test on its nibbles, also known as the poker test (AIS-31 Test 2).
//
// Every byte contributes its high and its low nibble to a 16-bin histogram. Under
// the null hypothesis of uniform bytes the statistic
//
//	χ² = Σ (Oᵢ - E)² / E
//
// follows a chi-squared distribution with 15 degrees of freedom. Buffers whose
// statistic exceeds Threshold are reported as bad randomness.
//
// The test only detects distribution bias. A counter or a poor LCG can have a
// perfectly flat nibble histogram and will pass. Rejecting buffers that fail the
// test also removes a tiny amount of entropy from a perfect source, about
// -log2(1 - FalsePositiveRate()) bits per test.
package poker

import (
	"errors"
	"fmt"
	"io"

	"github.com/oreparaz/dudero/chisquared"
	"github.com/oreparaz/dudero/internal"
)

const (
	// MinLen is the shortest buffer accepted by CheckBuffer, in bytes.
	MinLen = 16
	// MaxLen is the longest buffer accepted, in bytes.
	MaxLen = 32768
	// NumBins is the number of distinct nibble values.
	NumBins = 16
	// DegreesOfFreedom of the statistic: NumBins - 1.
	DegreesOfFreedom = NumBins - 1
	// Threshold on the statistic. P(χ² > 50 | df=15) ≈ 1.2e-5, so a perfect source is
	// rejected about once every 83,000 tests regardless of buffer length.
	// AIS-31 uses 46.17 for comparison.
	Threshold = 50.0
)

var (
	ErrTooShort = fmt.Errorf("buffer too short (minimum %d bytes)", MinLen)
	ErrTooLong  = fmt.Errorf("buffer too long (maximum %d bytes)", MaxLen)
)

// Result is the outcome of a completed test.
type Result int

const (
	// ResultOK means the data appears random.
	ResultOK Result = iota
	// ResultBadRandomness means the data appears biased or fixed.
	ResultBadRandomness
)

func (r Result) String() string {
	switch r {
	case ResultOK:
		return "ok"
	case ResultBadRandomness:
		return "bad randomness"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// Context accumulates the nibble histogram of a stream of bytes.
// The zero value is ready to use. Contexts are comparable with ==.
type Context struct {
	hist    [NumBins]uint32
	samples int // nibbles, two per byte
}

// NewContext returns an empty context.
func NewContext() *Context {
	return &Context{}
}

// Add adds both nibbles of b. It fails with ErrTooLong once MaxLen bytes have been added.
func (c *Context) Add(b byte) error {
	if c.samples >= MaxLen*2 {
		return ErrTooLong
	}
	hi, lo := internal.Nibbles(b)
	c.hist[hi]++
	c.hist[lo]++
	c.samples += 2
	return nil
}

// AddBytes adds every byte of buf, stopping at the first error.
func (c *Context) AddBytes(buf []byte) error {
	for _, b := range buf {
		if err := c.Add(b); err != nil {
			return err
		}
	}
	return nil
}

// Write implements io.Writer so a context can be the target of io.Copy.
// It reports the number of bytes added before an error.
func (c *Context) Write(p []byte) (int, error) {
	for i, b := range p {
		if err := c.Add(b); err != nil {
			return i, err
		}
	}
	return len(p), nil
}

// Len returns the number of bytes added so far.
func (c *Context) Len() int {
	return c.samples / 2
}

// IsEmpty returns true if no bytes have been added.
func (c *Context) IsEmpty() bool {
	return c.samples == 0
}

// Reset empties the context.
func (c *Context) Reset() {
	*c = Context{}
}

// Histogram returns a copy of the nibble counts indexed by nibble value.
func (c *Context) Histogram() [NumBins]uint32 {
	return c.hist
}

// Statistic returns Σ(Oᵢ - E)² / E. The expected count E is the number of nibbles
// divided by NumBins, rounded down, so at least NumBins nibbles are required.
func (c *Context) Statistic() (float64, error) {
	if c.samples < NumBins {
		return 0, ErrTooShort
	}
	expected := uint64(c.samples / NumBins)
	var cum uint64
	for _, count := range c.hist {
		delta := internal.AbsDiff(uint64(count), expected)
		cum += delta * delta
	}
	return float64(cum) / float64(expected), nil
}

// PValue returns the probability that a uniform source produces a statistic at
// least as large as the current one.
func (c *Context) PValue() (float64, error) {
	stat, err := c.Statistic()
	if err != nil {
		return 0, err
	}
	return chisquared.UpperTail(stat, DegreesOfFreedom), nil
}

// Finish compares the statistic against Threshold. The context is left unchanged.
func (c *Context) Finish() (Result, error) {
	stat, err := c.Statistic()
	if err != nil {
		return ResultOK, err
	}
	if stat > Threshold {
		return ResultBadRandomness, nil
	}
	return ResultOK, nil
}

// CheckBuffer runs the test over buf, which must hold between MinLen and MaxLen bytes.
func CheckBuffer(buf []byte) (Result, error) {
	if len(buf) < MinLen {
		return ResultOK, ErrTooShort
	}
	if len(buf) > MaxLen {
		return ResultOK, ErrTooLong
	}
	var c Context
	if err := c.AddBytes(buf); err != nil {
		return ResultOK, err
	}
	return c.Finish()
}

// CheckReader runs the test over everything read from r. The length limits of
// CheckBuffer apply; reading stops with ErrTooLong as soon as MaxLen is exceeded.
func CheckReader(r io.Reader) (Result, error) {
	var c Context
	if _, err := io.Copy(&c, r); err != nil {
		return ResultOK, err
	}
	if c.Len() < MinLen {
		return ResultOK, ErrTooShort
	}
	return c.Finish()
}

// FalsePositiveRate is the probability that a buffer from a perfect source is
// reported as bad randomness.
func FalsePositiveRate() float64 {
	return chisquared.UpperTail(Threshold, DegreesOfFreedom)
}

// IsLengthError reports whether err is one of the buffer length errors.
func IsLengthError(err error) bool {
	return errors.Is(err, ErrTooShort) || errors.Is(err, ErrTooLong)
}
