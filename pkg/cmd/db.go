package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docshield/docshield/pkg/configs"
	"github.com/docshield/docshield/pkg/internal/storage/db"
)

var (
	dbCmd = &cobra.Command{
		Use:   "db",
		Short: "Database related commands",
	}

	dbListCmd = &cobra.Command{
		Use:   "ls",
		Short: "list all registered database types",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Registered database types:")
			for _, dbType := range db.GetRegisteredDBTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), " - "+dbType)
			}
		},
	}

	dbPingCmd = &cobra.Command{
		Use:   "ping",
		Short: "connect to the configured database and ping it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := configs.InitConfig(configPath); err != nil {
				return err
			}

			client, err := db.New(cmd.Context())
			if err != nil {
				return err
			}

			sqlDB, err := client.DB.DB()
			if err != nil {
				return err
			}
			defer sqlDB.Close()

			if err := sqlDB.PingContext(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "database ok:", configs.GetConfig().DB.GetDBType())

			return nil
		},
	}

	// db.New 连接时自动迁移，migrate 子命令显式触发一次并汇报结果.
	dbMigrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "run schema migration against the configured database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := configs.InitConfig(configPath); err != nil {
				return err
			}

			client, err := db.New(cmd.Context())
			if err != nil {
				return err
			}

			if err := db.Migrate(client.GetDB()); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "migration complete")

			return nil
		},
	}
)

// registerDBCommands 注册数据库相关命令.
func registerDBCommands() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbListCmd, dbPingCmd, dbMigrateCmd)
}
