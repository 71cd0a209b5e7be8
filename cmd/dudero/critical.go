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
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/oreparaz/dudero/chisquared"
	"github.com/oreparaz/dudero/threshold"
)

type criticalReport struct {
	FPR              float64 `json:"fpr" yaml:"fpr"`
	DegreesOfFreedom float64 `json:"df" yaml:"df"`
	Threshold        float64 `json:"threshold" yaml:"threshold"`
}

func NewCriticalCommand() *cobra.Command {
	report := criticalReport{
		FPR:              threshold.DefaultTarget,
		DegreesOfFreedom: threshold.DefaultDegreesOfFreedom,
	}
	outputFlags := NewOutputFlags()

	cmd := &cobra.Command{
		Use:   "critical",
		Short: "Compute the threshold that gives a false-positive rate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := chisquared.CriticalValue(report.FPR, report.DegreesOfFreedom)
			if err != nil {
				return errors.Wrapf(err, "could not compute critical value for fpr=%g df=%g", report.FPR, report.DegreesOfFreedom)
			}
			report.Threshold = x
			return outputFlags.Write(cmd.OutOrStdout(), report, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "P(χ² > %.4f | df=%g) = %g\n", report.Threshold, report.DegreesOfFreedom, report.FPR)
				return err
			})
		},
	}
	cmd.Flags().Float64Var(&report.FPR, "fpr", report.FPR, "Target false-positive rate")
	cmd.Flags().Float64Var(&report.DegreesOfFreedom, "df", report.DegreesOfFreedom, "Degrees of freedom of the test statistic")
	outputFlags.BindFlags(cmd.Flags())
	return cmd
}
