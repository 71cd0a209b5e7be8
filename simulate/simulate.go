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

// Package simulate estimates the empirical rejection rate of the poker test by
// running many buffers from deterministic byte sources through it.
//
// With an unbiased source the rate estimates the false-positive rate, which
// should agree with the analytic value. With a masked source it estimates the
// sensitivity of the test to a stuck bit.
package simulate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/oreparaz/dudero/internal"
	"github.com/oreparaz/dudero/internal/proportion"
	"github.com/oreparaz/dudero/poker"
)

const (
	DefaultTrials    = 100000
	DefaultBufferLen = 512
	// boundsStdDevs is the width of the confidence interval on the observed rate.
	boundsStdDevs = 3.0
)

var ErrInvalidConfig = errors.New("invalid simulation config")

// Config describes a simulation run.
type Config struct {
	Trials    int
	BufferLen int
	Seed      uint64
	// Workers bounds the number of concurrent trials. Zero means GOMAXPROCS.
	Workers int
	// Mask is applied to every Stride-th byte of each buffer. A zero Stride disables masking.
	Mask   byte
	Stride int
}

// DefaultConfig returns an unbiased run matching the reference harness.
func DefaultConfig() Config {
	return Config{
		Trials:    DefaultTrials,
		BufferLen: DefaultBufferLen,
		Seed:      internal.DefaultSeed,
	}
}

func (c Config) validate() error {
	if c.Trials <= 0 {
		return fmt.Errorf("%w: trials must be positive, got %d", ErrInvalidConfig, c.Trials)
	}
	if c.BufferLen < poker.MinLen || c.BufferLen > poker.MaxLen {
		return fmt.Errorf("%w: buffer length must be in [%d, %d], got %d",
			ErrInvalidConfig, poker.MinLen, poker.MaxLen, c.BufferLen)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers cannot be negative, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.Stride < 0 {
		return fmt.Errorf("%w: stride cannot be negative, got %d", ErrInvalidConfig, c.Stride)
	}
	return nil
}

// Summary is the outcome of a simulation run.
type Summary struct {
	Trials     int               `json:"trials" yaml:"trials"`
	Rejections int               `json:"rejections" yaml:"rejections"`
	Rate       float64           `json:"rate" yaml:"rate"`
	Bounds     proportion.Bounds `json:"bounds" yaml:"bounds"`
	// Expected is the analytic false-positive rate of the poker test.
	Expected float64 `json:"expected" yaml:"expected"`
}

// Consistent reports whether the analytic false-positive rate lies inside the
// confidence interval of the observed rate. Only meaningful for unbiased sources.
func (s Summary) Consistent() bool {
	return s.Bounds.Contains(s.Expected)
}

// Run executes cfg.Trials independent trials. Trial i reads cfg.BufferLen bytes
// from the source seeded with cfg.Seed+i, so the summary does not depend on the
// number of workers or on scheduling.
func Run(ctx context.Context, cfg Config) (Summary, error) {
	if err := cfg.validate(); err != nil {
		return Summary{}, err
	}
	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, cfg.Trials)

	log.WithFields(log.Fields{
		"trials":  cfg.Trials,
		"len":     cfg.BufferLen,
		"seed":    cfg.Seed,
		"workers": workers,
		"stride":  cfg.Stride,
	}).Debug("starting simulation")

	var rejections atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			buf := make([]byte, cfg.BufferLen)
			for i := w; i < cfg.Trials; i += workers {
				if err := gctx.Err(); err != nil {
					return err
				}
				rejected, err := trial(cfg, uint64(i), buf)
				if err != nil {
					return err
				}
				if rejected {
					rejections.Add(1)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	k := int(rejections.Load())
	bounds, err := proportion.Interval(uint64(cfg.Trials), uint64(k), boundsStdDevs)
	if err != nil {
		return Summary{}, err
	}
	summary := Summary{
		Trials:     cfg.Trials,
		Rejections: k,
		Rate:       float64(k) / float64(cfg.Trials),
		Bounds:     bounds,
		Expected:   poker.FalsePositiveRate(),
	}
	log.WithFields(log.Fields{
		"rejections": summary.Rejections,
		"rate":       summary.Rate,
	}).Debug("simulation finished")
	return summary, nil
}

func trial(cfg Config, i uint64, buf []byte) (bool, error) {
	src := NewHashSource(cfg.Seed + i)
	if cfg.Stride > 0 {
		src = NewMaskedSource(src, cfg.Mask, cfg.Stride)
	}
	if _, err := io.ReadFull(src, buf); err != nil {
		return false, err
	}
	res, err := poker.CheckBuffer(buf)
	if err != nil {
		return false, err
	}
	return res == poker.ResultBadRandomness, nil
}
