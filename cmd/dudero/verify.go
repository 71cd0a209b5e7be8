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
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/oreparaz/dudero/threshold"
)

type verifyReport struct {
	threshold.Evaluation `yaml:",inline"`
	Verified             bool            `json:"verified" yaml:"verified"`
	Table                []threshold.Row `json:"table" yaml:"table"`
}

func NewVerifyCommand() *cobra.Command {
	thresholdFlags := NewThresholdFlags()
	outputFlags := NewOutputFlags()

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify that a threshold gives the target false-positive rate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := thresholdFlags.Validate(); err != nil {
				return err
			}
			ev := threshold.Evaluate(thresholdFlags.Threshold, thresholdFlags.DegreesOfFreedom, thresholdFlags.Target)
			report := verifyReport{
				Evaluation: ev,
				Verified:   ev.Verified(thresholdFlags.TolerancePercent),
				Table:      threshold.Compare(thresholdFlags.DegreesOfFreedom, threshold.CommonThresholds),
			}

			logger := log.WithFields(log.Fields{
				"threshold":      ev.Threshold,
				"df":             ev.DegreesOfFreedom,
				"fpr":            ev.FPR,
				"relative_error": ev.RelativeError,
			})
			if report.Verified {
				logger.Debug("threshold verified")
			} else {
				logger.Debug("threshold outside tolerance")
			}

			return outputFlags.Write(cmd.OutOrStdout(), report, func(w io.Writer) error {
				return threshold.WriteReport(w, ev, thresholdFlags.TolerancePercent, report.Table)
			})
		},
	}
	thresholdFlags.BindFlags(cmd.Flags())
	outputFlags.BindFlags(cmd.Flags())
	return cmd
}
