/*
Copyright © 2021 Edmond Cotterell

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/Daskott/scamguard/colors"
	"github.com/Daskott/scamguard/server/classifier"
	"github.com/Daskott/scamguard/server/phone"
	"github.com/go-playground/validator"
	"github.com/spf13/cobra"
)

var (
	keywordsArg    []string
	countryCodeArg string
)

func init() {
	rootCmd.AddCommand(createCheckCmd())
	rootCmd.AddCommand(createNormalizeCmd())
}

func createCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [message]",
		Short: "Classify a message without recording or sending anything",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringSliceVarP(&keywordsArg, "keywords", "k", nil, "comma separated keywords to flag (default is the built-in list)")

	return cmd
}

func runCheck(cmd *cobra.Command, message string) error {
	analysis := classifier.Analyze(classifier.NewKeywordClassifier(keywordsArg), message)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "verdict: %v\n", colors.Verdict(analysis.IsScam))
	fmt.Fprintf(out, "warning: %v\n", analysis.Warning)
	fmt.Fprintf(out, "explanation: %v\n", analysis.Explanation)

	return nil
}

func createNormalizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize [phone...]",
		Short: "Print the E.164 form of each phone number",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNormalize(cmd, args)
		},
	}

	cmd.Flags().StringVarP(&countryCodeArg, "country-code", "c", phone.DefaultCountryCode, "country code for numbers without one")

	return cmd
}

func runNormalize(cmd *cobra.Command, phones []string) error {
	if err := validator.New().Var(countryCodeArg, "omitempty,numeric,max=3"); err != nil {
		return formattedError("invalid country code %q", countryCodeArg)
	}

	out := cmd.OutOrStdout()
	for _, raw := range phones {
		e164, err := phone.Normalize(raw, countryCodeArg)
		if err != nil {
			fmt.Fprintf(out, "%v\t%v\n", raw, colors.Red("invalid"))
			continue
		}
		fmt.Fprintf(out, "%v\t%v\n", raw, colors.Green(e164))
	}

	return nil
}
