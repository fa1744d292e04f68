package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/tafel"
	"github.com/aretw0/tafel/internal/logging"
	"github.com/aretw0/tafel/pkg/faq"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a single question from the knowledge base",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		kb, err := faq.Load(cfg.Knowledge.Path)
		if err != nil {
			return err
		}

		res, err := tafel.New(kb, tafel.WithLogger(logging.NewNop())).Ask(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}

		verbose, _ := cmd.Flags().GetBool("verbose")
		if verbose {
			if res.Matched() {
				fmt.Fprintf(cmd.OutOrStdout(), "[#%d %s, score %d]\n", res.Record.ID, res.Record.Title, res.Score)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "[no match]")
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Answer)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().BoolP("verbose", "v", false, "Show the matching record and score")
}
