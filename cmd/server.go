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
	"os"
	"path/filepath"

	"github.com/Daskott/scamguard/dev/config"
	"github.com/Daskott/scamguard/server"
	"github.com/Daskott/scamguard/shared"
	"github.com/Daskott/scamguard/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(createServerCmd())
}

func createServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Start a scamguard server",
		Long: `The scamguard server classifies submitted messages, keeps a ledger of alerts
and sends SMS warnings to a user & their family when a message looks like a scam.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			serverConfig, err := serverConfig(cmd)
			if err != nil {
				return err
			}

			server.Start(serverConfig, isDevEnv)
			return nil
		},
	}
}

// serverConfig reads the server config file, if any, with env vars taking precedence
func serverConfig(cmd *cobra.Command) (*viper.Viper, error) {
	config := viper.New()
	shared.BindEnv(config)

	configFile := cfgFile
	if isDevEnv && configFile == "" {
		path, err := devConfigFilePath()
		if err != nil {
			return nil, err
		}
		configFile = path
	}

	if configFile == "" {
		fmt.Fprintln(cmd.ErrOrStderr(), warningLabel, "no --config provided, using defaults & env vars")
		return config, nil
	}

	config.SetConfigFile(configFile)
	if err := config.ReadInConfig(); err != nil {
		return nil, formattedError("error reading server config file: %v", err)
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Using config file:", config.ConfigFileUsed())
	return config, nil
}

// devConfigFilePath returns dev/config/server.yml, creating it with the
// default dev settings if it's missing
func devConfigFilePath() (string, error) {
	configDir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	configFilePath := filepath.Join(configDir, "dev", "config", "server.yml")
	if utils.FileExist(configFilePath) {
		return configFilePath, nil
	}

	if err := utils.EnsureParentDir(configFilePath); err != nil {
		return "", err
	}

	if err := os.WriteFile(configFilePath, []byte(config.SERVER_YML), 0600); err != nil {
		return "", err
	}

	return configFilePath, nil
}
