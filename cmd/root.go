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

	"github.com/Daskott/scamguard/colors"
	"github.com/Daskott/scamguard/version"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	isDevEnv bool

	warningLabel = colors.Yellow("Warning:")
)

// rootCmd represents the base command when called without any subcommands.
// It's built at declaration so every init in the package can add to it.
var rootCmd = createRootCmd()

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func createRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "scamguard",
		Version: fmt.Sprintf("v%s", version.Version),
		Short: `scamguard checks messages sent to elderly relatives for signs of a scam,
and warns them and their family by SMS when one is found.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "server config file (yaml)")
	cmd.PersistentFlags().BoolVarP(&isDevEnv, "dev", "", false, "run in development mode")

	return cmd
}

func formattedError(format string, a ...interface{}) error {
	return fmt.Errorf(colors.Red(format), a...)
}
