package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docshield/docshield/pkg/configs"
)

var (
	// config 子命令.
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "config subcommands",
	}

	// 打印当前使用的配置文件路径.
	pathCmd = &cobra.Command{
		Use:   "path",
		Short: "print the path of the current config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := configs.InitConfig(configPath); err != nil {
				return err
			}

			cfg := configs.GetViper().ConfigFileUsed()
			if cfg == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "no config file used (defaults and env only)")

				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), cfg)

			return nil
		},
	}

	// 打印解析后的配置；--debug 时额外输出 viper 内部状态.
	configDebugCmd = &cobra.Command{
		Use:   "debug",
		Short: "print the current config values",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := configs.InitConfig(configPath); err != nil {
				return err
			}

			if debug {
				configs.GetViper().Debug()
			}

			b, err := json.MarshalIndent(configs.GetConfig(), "", "  ")
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(b))

			return nil
		},
	}
)

// registerConfigsCommands 注册 CLI 子命令.
func registerConfigsCommands() {
	configCmd.AddCommand(pathCmd, configDebugCmd)
	rootCmd.AddCommand(configCmd)
}
