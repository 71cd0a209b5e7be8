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

// Package threshold checks that a chi-squared threshold gives the intended
// false-positive rate and renders the comparison report.
package threshold

import (
	"math"

	"github.com/oreparaz/dudero/chisquared"
)

const (
	DefaultThreshold        = 50.0
	DefaultDegreesOfFreedom = 15.0
	DefaultTarget           = 1e-5
	// DefaultTolerancePercent is the relative error under which a threshold counts as verified.
	DefaultTolerancePercent = 1.0
)

// Evaluation is the false-positive rate of a threshold and how far it is from a target.
type Evaluation struct {
	Threshold        float64 `json:"threshold" yaml:"threshold"`
	DegreesOfFreedom float64 `json:"df" yaml:"df"`
	FPR              float64 `json:"fpr" yaml:"fpr"`
	OneIn            float64 `json:"one_in" yaml:"one_in"` // 1 / FPR
	Percent          float64 `json:"percent" yaml:"percent"`
	Target           float64 `json:"target" yaml:"target"`
	AbsoluteError    float64 `json:"absolute_error" yaml:"absolute_error"`
	RelativeError    float64 `json:"relative_error_percent" yaml:"relative_error_percent"`
	EntropyLossBits  float64 `json:"entropy_loss_bits" yaml:"entropy_loss_bits"`
}

// Evaluate computes P(χ² > threshold | df) and compares it with target.
func Evaluate(threshold, df, target float64) Evaluation {
	fpr := chisquared.UpperTail(threshold, df)
	absErr := math.Abs(fpr - target)
	return Evaluation{
		Threshold:        threshold,
		DegreesOfFreedom: df,
		FPR:              fpr,
		OneIn:            1 / fpr,
		Percent:          fpr * 100,
		Target:           target,
		AbsoluteError:    absErr,
		RelativeError:    absErr / target * 100,
		EntropyLossBits:  EntropyLoss(fpr),
	}
}

// Verified reports whether the relative error is below tolerancePercent.
func (e Evaluation) Verified(tolerancePercent float64) bool {
	return e.RelativeError < tolerancePercent
}

// EntropyLoss is the entropy in bits removed from a perfect source when outputs
// rejected with probability fpr are discarded.
func EntropyLoss(fpr float64) float64 {
	return -math.Log2(1 - fpr)
}

// Named is a threshold with a human readable rate and use case.
type Named struct {
	Threshold float64 `json:"threshold" yaml:"threshold"`
	Rate      string  `json:"rate" yaml:"rate"`
	UseCase   string  `json:"use_case" yaml:"use_case"`
}

// Row is a Named threshold with its computed false-positive rate.
type Row struct {
	Named `yaml:",inline"`
	FPR   float64 `json:"fpr" yaml:"fpr"`
}

// CommonThresholds are well-known thresholds for 15 degrees of freedom.
var CommonThresholds = []Named{
	{Threshold: 37.70, Rate: "1 in 1,000", UseCase: "Aggressive testing"},
	{Threshold: 44.26, Rate: "1 in 10,000", UseCase: "Balanced"},
	{Threshold: 50.00, Rate: "1 in 100,000", UseCase: "Conservative (current)"},
	{Threshold: 56.49, Rate: "1 in 1,000,000", UseCase: "Very conservative"},
}

// Compare evaluates every entry at df degrees of freedom.
func Compare(df float64, entries []Named) []Row {
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, Row{Named: e, FPR: chisquared.UpperTail(e.Threshold, df)})
	}
	return rows
}
