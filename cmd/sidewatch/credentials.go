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
	"fmt"
	"os"

	"github.com/blinklabs-io/sidewatch/internal/secrets"
	"github.com/spf13/cobra"
)

func credentialsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Node RPC credentials file management",
	}
	cmd.AddCommand(credentialsEncryptCommand())
	return cmd
}

func credentialsEncryptCommand() *cobra.Command {
	var outFile string
	cmd := &cobra.Command{
		Use:   "encrypt <file>",
		Short: "Encrypt a plaintext credentials file with sops",
		Long: "Encrypt a plaintext credentials file with sops. Master keys are taken from " +
			secrets.EnvGcpKmsResourceId + " or " + secrets.EnvAwsKmsKeyArns + ".",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{annotationSkipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			plain, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading credentials file: %w", err)
			}
			encrypted, err := secrets.Encrypt(plain)
			if err != nil {
				return fmt.Errorf("encrypting credentials: %w", err)
			}
			if outFile == "" {
				_, err = cmd.OutOrStdout().Write(encrypted)
				return err
			}
			if err := os.WriteFile(outFile, encrypted, 0o600); err != nil {
				return fmt.Errorf("writing encrypted credentials: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().
		StringVarP(&outFile, "out", "o", "", "write to file instead of stdout")
	return cmd
}
