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

// Package proportion computes approximate Clopper-Pearson confidence intervals
// for a binomial proportion, used here to bound an empirically observed
// rejection rate.
//
// The inputs are the number of independent trials n and the number k of those
// trials that were rejections. kHat = k / n estimates the unknown rejection
// probability p, and Interval returns [Lower, Upper] around it at a confidence
// level given as a number of standard deviations of the standard normal.
//
// The approximation is not strictly conservative, unlike exact Clopper-Pearson
// intervals.
package proportion

import (
	"fmt"
	"math"
)

// Bounds is a confidence interval on a proportion.
type Bounds struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

// Contains reports whether p lies inside the interval.
func (b Bounds) Contains(p float64) bool {
	return p >= b.Lower && p <= b.Upper
}

// Interval returns the approximate Clopper-Pearson interval for k rejections out
// of n trials. k cannot exceed n.
func Interval(n, k uint64, numStdDevs float64) (Bounds, error) {
	if k > n {
		return Bounds{}, fmt.Errorf("rejections cannot exceed trials: n=%d, k=%d", n, k)
	}
	return Bounds{
		Lower: lowerBound(n, k, numStdDevs),
		Upper: upperBound(n, k, numStdDevs),
	}, nil
}

// lowerBound works on the right tail of the binomial distribution: it solves
// I_x(n-k+1, k) = 1 - delta for x = 1 - p.
func lowerBound(n, k uint64, numStdDevs float64) float64 {
	switch {
	case n == 0, k == 0:
		return 0.0
	case k == 1:
		delta := NormalCDF(-numStdDevs)
		return 1.0 - math.Pow(1.0-delta, 1.0/float64(n))
	case k == n:
		delta := NormalCDF(-numStdDevs)
		return math.Pow(delta, 1.0/float64(n))
	default:
		return 1.0 - inverseIncompleteBeta(float64(n-k+1), float64(k), -numStdDevs)
	}
}

// upperBound works on the left tail: it solves I_x(n-k, k+1) = delta for x = 1 - p.
func upperBound(n, k uint64, numStdDevs float64) float64 {
	switch {
	case n == 0, k == n:
		return 1.0
	case k == n-1:
		delta := NormalCDF(-numStdDevs)
		return math.Pow(1.0-delta, 1.0/float64(n))
	case k == 0:
		delta := NormalCDF(-numStdDevs)
		return 1.0 - math.Pow(delta, 1.0/float64(n))
	default:
		return 1.0 - inverseIncompleteBeta(float64(n-k), float64(k+1), numStdDevs)
	}
}

// NormalCDF is the standard normal cumulative distribution function.
func NormalCDF(x float64) float64 {
	return 0.5 * (1.0 + erf(x/math.Sqrt2))
}

// erf implements Abramowitz and Stegun formula 7.1.28, accurate to about 7 digits.
func erf(x float64) float64 {
	if x < 0 {
		return -erf(-x)
	}
	const (
		a1 = 0.0705230784
		a2 = 0.0422820123
		a3 = 0.0092705272
		a4 = 0.0001520143
		a5 = 0.0002765672
		a6 = 0.0000430638
	)
	x2 := x * x
	x3 := x2 * x
	sum := 1.0 + a1*x + a2*x2 + a3*x3 + a4*x2*x2 + a5*x2*x3 + a6*x3*x3
	sum2 := sum * sum
	sum4 := sum2 * sum2
	sum8 := sum4 * sum4
	return 1.0 - 1.0/(sum8*sum8)
}

// inverseIncompleteBeta is Abramowitz and Stegun formula 26.5.22: the x for which
// I_x(a, b) leaves yp standard deviations' worth of probability in the right tail.
// Variable names follow the book.
func inverseIncompleteBeta(a, b, yp float64) float64 {
	b2m1 := 2.0*b - 1.0
	a2m1 := 2.0*a - 1.0
	lambda := (yp*yp - 3.0) / 6.0
	h := 2.0 / (1.0/a2m1 + 1.0/b2m1)
	term1 := yp * math.Sqrt(h+lambda) / h
	term2 := 1.0/b2m1 - 1.0/a2m1
	term3 := lambda + 5.0/6.0 - 2.0/(3.0*h)
	w := term1 - term2*term3
	return a / (a + b*math.Exp(2.0*w))
}
