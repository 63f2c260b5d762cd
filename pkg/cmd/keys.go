package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/docshield/docshield/pkg/configs"
	"github.com/docshield/docshield/pkg/internal/service"
)

var (
	keysCmd = &cobra.Command{
		Use:   "keys",
		Short: "Signing key related commands",
	}

	keysGenCmd = &cobra.Command{
		Use:   "generate",
		Short: "generate a new RSA signing key pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := configs.InitConfig(configPath); err != nil {
				return err
			}

			cfg := configs.GetConfig().Signing

			if _, err := service.GenerateKeyPair(cfg); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "private key:", filepath.Join(cfg.KeyDir, cfg.PrivateFile))
			fmt.Fprintln(cmd.OutOrStdout(), "public key: ", filepath.Join(cfg.KeyDir, cfg.PublicFile))

			return nil
		},
	}
)

// registerKeysCommands 注册签名密钥相关命令.
func registerKeysCommand() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.AddCommand(keysGenCmd)
}
