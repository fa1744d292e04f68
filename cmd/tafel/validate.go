package main

import (
	"fmt"

	httpAdapter "github.com/aretw0/tafel/pkg/adapters/http"
	"github.com/aretw0/tafel/pkg/faq"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and the knowledge base",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		kb, err := faq.Load(cfg.Knowledge.Path)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		if _, err := httpAdapter.LoadSpec(cmd.Context()); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		out := cmd.OutOrStdout()
		source := cfg.Knowledge.Path
		if source == "" {
			source = "built-in"
		}
		fmt.Fprintf(out, "Knowledge base (%s): %d records\n", source, len(kb.Records))
		fmt.Fprintf(out, "Session backend: %s (idle ttl %s)\n", cfg.Session.Backend, cfg.Session.TTL)
		if cfg.Mail.Enabled() {
			fmt.Fprintf(out, "Mail: %s via %s:%d\n", cfg.Mail.Receiver, cfg.Mail.Host, cfg.Mail.Port)
		} else {
			fmt.Fprintln(out, "Mail: not configured (SENDER_EMAIL, SENDER_PASSWORD, RECEIVER_EMAIL)")
		}
		fmt.Fprintln(out, "Configuration is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
