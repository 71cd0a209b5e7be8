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
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/oreparaz/dudero/poker"
)

var errBadRandomness = errors.New("bad randomness detected")

type checkReport struct {
	Source    string  `json:"source" yaml:"source"`
	Bytes     int     `json:"bytes" yaml:"bytes"`
	Digest    string  `json:"xxhash64" yaml:"xxhash64"`
	Statistic float64 `json:"statistic" yaml:"statistic"`
	PValue    float64 `json:"p_value" yaml:"p_value"`
	Result    string  `json:"result" yaml:"result"`
}

func NewCheckCommand() *cobra.Command {
	outputFlags := NewOutputFlags()

	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Check whether the bytes of a file look random",
		Long: fmt.Sprintf(`Check reads between %d and %d bytes from the file, or from standard
input when the file is omitted or "-", and runs the nibble poker test on them.
The command fails when the data looks like bad randomness.`, poker.MinLen, poker.MaxLen),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := "-"
			if len(args) == 1 {
				source = args[0]
			}
			r := cmd.InOrStdin()
			if source != "-" {
				f, err := os.Open(source)
				if err != nil {
					return errors.Wrapf(err, "could not open %s", source)
				}
				defer f.Close()
				r = f
			}

			report, result, err := check(source, r)
			if err != nil {
				return err
			}
			log.WithFields(log.Fields{
				"source":   report.Source,
				"bytes":    report.Bytes,
				"xxhash64": report.Digest,
			}).Debug("checked input")

			if err := outputFlags.Write(cmd.OutOrStdout(), report, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "bytes: %d\nstatistic: %.4f (threshold %g)\np-value: %.6e\nresult: %s\n",
					report.Bytes, report.Statistic, poker.Threshold, report.PValue, report.Result)
				return err
			}); err != nil {
				return err
			}
			if result == poker.ResultBadRandomness {
				return errBadRandomness
			}
			return nil
		},
	}
	outputFlags.BindFlags(cmd.Flags())
	return cmd
}

func check(source string, r io.Reader) (checkReport, poker.Result, error) {
	c := poker.NewContext()
	digest := xxhash.New()
	if _, err := io.Copy(io.MultiWriter(c, digest), r); err != nil {
		return checkReport{}, poker.ResultOK, errors.Wrapf(err, "could not read %s", source)
	}
	if c.Len() < poker.MinLen {
		return checkReport{}, poker.ResultOK, errors.Wrapf(poker.ErrTooShort, "could not check %s", source)
	}

	stat, err := c.Statistic()
	if err != nil {
		return checkReport{}, poker.ResultOK, err
	}
	pValue, err := c.PValue()
	if err != nil {
		return checkReport{}, poker.ResultOK, err
	}
	result, err := c.Finish()
	if err != nil {
		return checkReport{}, poker.ResultOK, err
	}
	return checkReport{
		Source:    source,
		Bytes:     c.Len(),
		Digest:    fmt.Sprintf("%016x", digest.Sum64()),
		Statistic: stat,
		PValue:    pValue,
		Result:    result.String(),
	}, result, nil
}
