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
	"github.com/spf13/pflag"

	"github.com/oreparaz/dudero/simulate"
)

// SimulateFlags configure a simulation run.
type SimulateFlags struct {
	simulate.Config
}

func NewSimulateFlags() *SimulateFlags {
	return &SimulateFlags{Config: simulate.DefaultConfig()}
}

func (f *SimulateFlags) BindFlags(fs *pflag.FlagSet) {
	fs.IntVar(&f.Trials, "trials", f.Trials, "Number of buffers to test")
	fs.IntVar(&f.BufferLen, "len", f.BufferLen, "Length of each buffer in bytes")
	fs.Uint64Var(&f.Seed, "seed", f.Seed, "Seed of the first buffer; buffer i uses seed+i")
	fs.IntVar(&f.Workers, "workers", f.Workers, "Concurrent workers, 0 for one per CPU")
	fs.Uint8Var(&f.Mask, "mask", 0xEF, "Mask ANDed into every stride-th byte")
	fs.IntVar(&f.Stride, "stride", f.Stride, "Apply the mask to every stride-th byte, 0 for an unbiased source")
}

func NewSimulateCommand() *cobra.Command {
	simulateFlags := NewSimulateFlags()
	outputFlags := NewOutputFlags()

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Measure the rejection rate of the poker test on generated buffers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := simulate.Run(cmd.Context(), simulateFlags.Config)
			if err != nil {
				return errors.Wrap(err, "simulation failed")
			}
			return outputFlags.Write(cmd.OutOrStdout(), summary, func(w io.Writer) error {
				_, err := fmt.Fprintf(w,
					"rejected: %d / %d (%.5f%%)\n99.7%% interval: [%.3e, %.3e]\nanalytic fpr: %.3e (1 in %.0f)\nconsistent: %t\n",
					summary.Rejections, summary.Trials, summary.Rate*100,
					summary.Bounds.Lower, summary.Bounds.Upper,
					summary.Expected, 1/summary.Expected, summary.Consistent())
				return err
			})
		},
	}
	simulateFlags.BindFlags(cmd.Flags())
	outputFlags.BindFlags(cmd.Flags())
	return cmd
}
