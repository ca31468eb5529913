// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/blinklabs-io/sidewatch/activation"
	"github.com/blinklabs-io/sidewatch/internal/config"
	"github.com/blinklabs-io/sidewatch/noderpc"
	"github.com/blinklabs-io/sidewatch/sidechain"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

const (
	outputTable = "table"
	outputJson  = "json"
)

var errUnknownOutput = errors.New("unknown output format")

type activationRow struct {
	activation.Record
	Period  uint32 `json:"period"`
	Expired bool   `json:"expired"`
}

func activationCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "activation",
		Short: "Fetch pending sidechain proposals once and print them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				return errors.New("no config found in context")
			}
			if output != outputTable && output != outputJson {
				return fmt.Errorf("%w: %s", errUnknownOutput, output)
			}
			// Logs go to stderr so they don't mix with the table
			logLevel := slog.LevelWarn
			if globalFlags.debug {
				logLevel = slog.LevelDebug
			}
			logger := slog.New(
				slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
					Level: logLevel,
				}),
			)
			client, err := noderpc.NewClient(cfg.Rpc, logger)
			if err != nil {
				return fmt.Errorf("failed to create node RPC client: %w", err)
			}
			defer client.Close()
			model, err := activation.NewModel(activation.ModelConfig{
				Source:       client,
				Logger:       logger,
				Thresholds:   cfg.Thresholds,
				FetchTimeout: cfg.FetchTimeout,
			})
			if err != nil {
				return err
			}
			res := model.Reconcile(cmd.Context())
			if res.Err != nil {
				return res.Err
			}
			out := cmd.OutOrStdout()
			if output == outputJson {
				return writeActivationJson(out, model.Rows(), model.Thresholds())
			}
			writeActivationTable(out, model.Rows(), model.Thresholds())
			return nil
		},
	}
	cmd.Flags().
		StringVarP(&output, "output", "o", outputTable, "output format: table or json")
	return cmd
}

func writeActivationTable(
	w io.Writer,
	records []activation.Record,
	th sidechain.Thresholds,
) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(activation.Headers())
	table.SetAutoWrapText(false)
	for _, record := range records {
		table.Append(record.Cells(th))
	}
	table.Render()
}

func writeActivationJson(
	w io.Writer,
	records []activation.Record,
	th sidechain.Thresholds,
) error {
	rows := make([]activationRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, activationRow{
			Record:  record,
			Period:  record.Period(th),
			Expired: record.Expired(th),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
