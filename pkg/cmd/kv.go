package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/docshield/docshield/pkg/configs"
	kv "github.com/docshield/docshield/pkg/internal/storage/kv"
)

var kvSetTTL time.Duration

var (
	kvCmd = &cobra.Command{
		Use:     "kv",
		Short:   "Key-Value store related commands",
		Aliases: []string{"keyvalue"},
	}

	kvListCmd = &cobra.Command{
		Use:     "list",
		Short:   "list all registered kv types",
		Aliases: []string{"ls", "l"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Registered kv types:")
			for _, t := range kv.GetRegisteredKVTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), "   - "+string(t))
			}
		},
	}

	kvGetCmd = &cobra.Command{
		Use:   "get <key>",
		Short: "read a key from the configured kv store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := kvClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			value, err := client.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(value))

			return nil
		},
	}

	kvSetCmd = &cobra.Command{
		Use:   "set <key> <value>",
		Short: "write a key to the configured kv store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := kvClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.Set(cmd.Context(), args[0], []byte(args[1]), kvSetTTL); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "ok")

			return nil
		},
	}

	kvDelCmd = &cobra.Command{
		Use:     "del <key>",
		Short:   "delete a key from the configured kv store",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := kvClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "ok")

			return nil
		},
	}

	kvKeysCmd = &cobra.Command{
		Use:   "keys [pattern]",
		Short: "list keys in the configured kv store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := kvClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			pattern := ""
			if len(args) == 1 {
				pattern = args[0]
			}

			keys, err := client.Keys(cmd.Context(), pattern)
			if err != nil {
				return err
			}

			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}

			return nil
		},
	}
)

func kvClient(cmd *cobra.Command) (*kv.Client, error) {
	if err := configs.InitConfig(configPath); err != nil {
		return nil, err
	}

	return kv.NewKVClient(cmd.Context())
}

// registerKVCommands 注册 KV 相关命令.
func registerKVCommands() {
	rootCmd.AddCommand(kvCmd)
	kvCmd.AddCommand(kvListCmd, kvGetCmd, kvSetCmd, kvDelCmd, kvKeysCmd)

	kvSetCmd.Flags().DurationVar(&kvSetTTL, "ttl", 0, "expiry for the key, 0 means never")
}
