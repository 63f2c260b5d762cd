package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/spf13/cobra"

	"github.com/docshield/docshield/pkg/configs"
	mq "github.com/docshield/docshield/pkg/internal/storage/mq"
)

var (
	mqCmd = &cobra.Command{
		Use:     "mq",
		Short:   "Message queue related commands",
		Aliases: []string{"messagequeue"},
	}

	mqListCmd = &cobra.Command{
		Use:     "list",
		Short:   "list all registered mq types",
		Aliases: []string{"ls", "l"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Registered mq types:")
			for _, t := range mq.GetRegisteredMQTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), "   - "+string(t))
			}
		},
	}

	mqPubCmd = &cobra.Command{
		Use:   "pub <topic> <payload>",
		Short: "publish a message to a topic",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := configs.InitConfig(configPath); err != nil {
				return err
			}

			client, err := mq.New(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			msg := message.NewMessage(watermill.NewUUID(), []byte(args[1]))
			if err := client.Publish(cmd.Context(), args[0], msg); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "published", msg.UUID, "to", args[0])

			return nil
		},
	}

	mqSubCmd = &cobra.Command{
		Use:   "sub <topic>",
		Short: "print messages from a topic until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := configs.InitConfig(configPath); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			client, err := mq.New(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			msgs, err := client.Subscribe(ctx, args[0])
			if err != nil {
				return err
			}

			for {
				select {
				case <-ctx.Done():
					return nil
				case msg, ok := <-msgs:
					if !ok {
						return nil
					}

					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", msg.UUID, msg.Payload)
					msg.Ack()
				}
			}
		},
	}
)

// registerMQCommands 注册 MQ 相关命令.
func registerMQCommands() {
	rootCmd.AddCommand(mqCmd)
	mqCmd.AddCommand(mqListCmd, mqPubCmd, mqSubCmd)
}
