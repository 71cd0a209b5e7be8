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

package threshold

import (
	"fmt"
	"io"
	"strings"
)

const ruleWidth = 70

// reportWriter remembers the first write error so the rendering code can stay linear.
type reportWriter struct {
	w   io.Writer
	err error
}

func (r *reportWriter) printf(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format, args...)
}

func (r *reportWriter) line(s string) {
	r.printf("%s\n", s)
}

func (r *reportWriter) heading(title string) {
	r.line(strings.Repeat("=", ruleWidth))
	r.line(title)
	r.line(strings.Repeat("=", ruleWidth))
	r.line("")
}

// WriteReport renders the full verification report for ev followed by the
// comparison table rows.
func WriteReport(w io.Writer, ev Evaluation, tolerancePercent float64, rows []Row) error {
	r := &reportWriter{w: w}

	r.heading(fmt.Sprintf("Mathematical Verification of Threshold = %g", ev.Threshold))
	r.line("Chi-Squared Goodness-of-Fit Test")
	r.line(strings.Repeat("-", ruleWidth))
	r.line("")
	r.line("Test statistic: χ² = Σ(Oᵢ - E)² / E")
	r.printf("Degrees of freedom: df = %g (%g bins - 1)\n", ev.DegreesOfFreedom, ev.DegreesOfFreedom+1)
	r.line("Null hypothesis: Data comes from uniform distribution")
	r.line("")
	r.printf("Under H₀, the test statistic follows χ²(%g) distribution\n", ev.DegreesOfFreedom)
	r.line("")

	r.heading("Result")
	r.printf("Threshold: χ² = %g\n", ev.Threshold)
	r.printf("P(χ² > %g | df=%g) = %.10f\n", ev.Threshold, ev.DegreesOfFreedom, ev.FPR)
	r.line("")
	r.line("False Positive Rate:")
	r.printf("  Scientific notation: %.6e\n", ev.FPR)
	r.printf("  As fraction: 1 in %.0f\n", ev.OneIn)
	r.printf("  As percentage: %.5f%%\n", ev.Percent)
	r.line("")
	r.printf("Target FPR: %.6e (1 in %.0f)\n", ev.Target, 1/ev.Target)
	r.printf("Absolute error: %.6e\n", ev.AbsoluteError)
	r.printf("Relative error: %.2f%%\n", ev.RelativeError)
	r.line("")
	if ev.Verified(tolerancePercent) {
		r.printf("✓ Threshold verified: FPR matches target within %g%%\n", tolerancePercent)
	} else {
		r.printf("⚠ Warning: Relative error is %.2f%%\n", ev.RelativeError)
	}
	r.line("")

	r.heading("Entropy Loss Analysis")
	r.printf("Entropy loss per test: %.6e bits\n", ev.EntropyLossBits)
	r.printf("For 128-bit string: %.10f bits (%.7f%%)\n", ev.EntropyLossBits, ev.EntropyLossBits/128*100)
	r.line("")
	r.line("Conclusion: Entropy loss is completely negligible")
	r.line("")

	r.heading("Common Threshold Values")
	if r.err == nil {
		r.err = WriteTable(w, rows)
	}
	r.line("")

	r.heading("Mathematical Foundation")
	r.line("The chi-squared CDF is computed using the incomplete gamma function:")
	r.line("")
	r.line("  P(χ² ≤ x) = γ(df/2, x/2) / Γ(df/2)")
	r.line("")
	r.line("Where:")
	r.line("  - γ(k, x) = ∫[0,x] t^(k-1) * e^(-t) dt  (lower incomplete gamma)")
	r.line("  - Γ(k) = ∫[0,∞] t^(k-1) * e^(-t) dt     (complete gamma)")
	r.line("")
	r.line("The false positive rate (FPR) is:")
	r.line("")
	r.line("  FPR = P(χ² > threshold) = 1 - P(χ² ≤ threshold)")
	r.line("")
	r.line("This probability is constant regardless of sample size, which is")
	r.line("a fundamental property of the chi-squared goodness-of-fit test.")

	return r.err
}

// WriteTable renders the comparison table of thresholds.
func WriteTable(w io.Writer, rows []Row) error {
	r := &reportWriter{w: w}
	r.printf("%-12s %-15s %-20s %-25s\n", "Threshold", "FPR", "Rate", "Use Case")
	r.line(strings.Repeat("-", ruleWidth))
	for _, row := range rows {
		r.printf("%-12.2f %-15.6e %-20s %-25s\n", row.Threshold, row.FPR, row.Rate, row.UseCase)
	}
	return r.err
}
