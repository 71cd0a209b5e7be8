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

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/oreparaz/dudero/threshold"
)

func NewTableCommand() *cobra.Command {
	df := threshold.DefaultDegreesOfFreedom
	outputFlags := NewOutputFlags()

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print the false-positive rates of common thresholds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if df <= 0 {
				return errors.Errorf("--df must be positive, got %g", df)
			}
			rows := threshold.Compare(df, threshold.CommonThresholds)
			return outputFlags.Write(cmd.OutOrStdout(), rows, func(w io.Writer) error {
				return threshold.WriteTable(w, rows)
			})
		},
	}
	cmd.Flags().Float64Var(&df, "df", df, "Degrees of freedom of the test statistic")
	outputFlags.BindFlags(cmd.Flags())
	return cmd
}
