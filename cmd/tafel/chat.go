package main

import (
	"os"

	"github.com/aretw0/tafel/internal/cli"
	"github.com/aretw0/tafel/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant in the terminal",
	Long: `Starts an interactive conversation on stdin/stdout, exactly as a guest on the website would see it.
Type 'exit' to leave. Replies are rendered as markdown when stdout is a terminal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		sc := cli.NewShutdownContext(cmd.Context())
		defer sc.Stop()

		app, err := newApp(sc, cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		clientID, _ := cmd.Flags().GetString("client-id")
		opts := cli.ChatOptions{
			ClientID: clientID,
			In:       os.Stdin,
			Out:      os.Stdout,
			Logger:   app.logger,
		}
		if tui.IsTerminal(os.Stdout) {
			tui.PrintBanner(os.Stdout, cfg.Restaurant.Name)
			opts.Prompt = "> "
			opts.Render = tui.NewRenderer()
		}

		return cli.RunChat(sc, app.assistant, opts)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("client-id", "local", "Conversation identifier")
}
