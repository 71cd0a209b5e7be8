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

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/oreparaz/dudero/chisquared"
	"github.com/oreparaz/dudero/threshold"
)

// ThresholdFlags select the threshold under test.
type ThresholdFlags struct {
	Threshold        float64
	DegreesOfFreedom float64
	Target           float64
	TolerancePercent float64
}

func NewThresholdFlags() *ThresholdFlags {
	return &ThresholdFlags{
		Threshold:        threshold.DefaultThreshold,
		DegreesOfFreedom: threshold.DefaultDegreesOfFreedom,
		Target:           threshold.DefaultTarget,
		TolerancePercent: threshold.DefaultTolerancePercent,
	}
}

func (f *ThresholdFlags) BindFlags(fs *pflag.FlagSet) {
	fs.Float64Var(&f.Threshold, "threshold", f.Threshold, "Chi-squared threshold to verify")
	fs.Float64Var(&f.DegreesOfFreedom, "df", f.DegreesOfFreedom, "Degrees of freedom of the test statistic")
	fs.Float64Var(&f.Target, "target", f.Target, "Target false-positive rate")
	fs.Float64Var(&f.TolerancePercent, "tolerance", f.TolerancePercent, "Relative error, in percent, accepted as a match")
}

func (f *ThresholdFlags) Validate() error {
	if f.DegreesOfFreedom <= 0 {
		return errors.Errorf("--df must be positive, got %g", f.DegreesOfFreedom)
	}
	if f.Target <= 0 || f.Target >= 1 {
		return errors.Errorf("--target must be in (0, 1), got %g", f.Target)
	}
	if math.IsNaN(f.Threshold) || math.IsInf(f.Threshold, 0) {
		return errors.Errorf("--threshold must be finite, got %g", f.Threshold)
	}
	// The report divides by the rate and takes log2(1 - rate).
	fpr := chisquared.UpperTail(f.Threshold, f.DegreesOfFreedom)
	if fpr >= 1 {
		return errors.Errorf("--threshold %g gives a false-positive rate of 1 at df=%g", f.Threshold, f.DegreesOfFreedom)
	}
	if fpr < chisquared.UpperTailResolution {
		return errors.Errorf("--threshold %g gives a false-positive rate of %g at df=%g, below the resolution of %g",
			f.Threshold, fpr, f.DegreesOfFreedom, chisquared.UpperTailResolution)
	}
	return nil
}

// OutputFlags select how a result is printed.
type OutputFlags struct {
	Output string
}

func NewOutputFlags() *OutputFlags {
	return &OutputFlags{Output: "text"}
}

func (f *OutputFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&f.Output, "output", "o", f.Output, "Output format; available options are 'text', 'json' and 'yaml'")
}

// Write renders v in the selected format. text is used for the text format.
func (f *OutputFlags) Write(w io.Writer, v any, text func(io.Writer) error) error {
	switch f.Output {
	case "text":
		return text(w)
	case "json":
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return errors.Wrap(err, "could not marshal json")
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case "yaml":
		out, err := yaml.Marshal(v)
		if err != nil {
			return errors.Wrap(err, "could not marshal yaml")
		}
		_, err = w.Write(out)
		return err
	default:
		return errors.Errorf("invalid output format: %s", f.Output)
	}
}
