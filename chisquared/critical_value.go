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

package chisquared

import (
	"errors"
	"math"
)

const (
	criticalValueRelativeWidth = 1e-12
	maxBisectionSteps          = 200
	// criticalValueAgreement is the relative error accepted between the requested
	// probability and the upper tail at the returned threshold.
	criticalValueAgreement = 1e-2
)

// ErrBelowResolution is returned when the requested probability is smaller than
// UpperTailResolution.
var ErrBelowResolution = errors.New("probability is below the resolution of the upper tail")

// CriticalValue returns the threshold x for which UpperTail(x, df) equals fpr.
//
// UpperTail is non-increasing in x, so the root is bracketed by doubling an upper
// bound starting from the mean and then refined by bisection. The threshold is
// only returned when UpperTail at that point agrees with fpr; otherwise the
// error is ErrBelowResolution.
func CriticalValue(fpr, df float64) (float64, error) {
	if err := validateDegreesOfFreedom(df); err != nil {
		return 0, err
	}
	if math.IsNaN(fpr) {
		return 0, ErrNaN
	}
	if fpr <= 0 || fpr >= 1 {
		return 0, ErrInvalidProbability
	}
	if fpr < UpperTailResolution {
		return 0, ErrBelowResolution
	}

	lo := 0.0
	hi := math.Max(df, 1.0)
	for UpperTail(hi, df) > fpr {
		lo = hi
		hi *= 2
		if math.IsInf(hi, 1) {
			return 0, ErrInvalidProbability
		}
	}

	for i := 0; i < maxBisectionSteps; i++ {
		mid := lo + (hi-lo)/2
		if UpperTail(mid, df) > fpr {
			lo = mid
		} else {
			hi = mid
		}
		if hi-lo <= criticalValueRelativeWidth*hi {
			break
		}
	}
	x := lo + (hi-lo)/2
	if math.Abs(UpperTail(x, df)-fpr) > criticalValueAgreement*fpr {
		return 0, ErrBelowResolution
	}
	return x, nil
}
