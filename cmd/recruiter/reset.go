package main

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"alfredoptarigan/talent-screener/internal/bootstrap"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard all stored candidate results. Weights are kept",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	session, err := bootstrap.OpenSession(cfg, log)
	if err != nil {
		return err
	}

	count := len(session.Candidates())
	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("Discard %d stored candidate(s)", count),
			IsConfirm: true,
		}
		if _, err := prompt.Run(); err != nil {
			if errors.Is(err, promptui.ErrAbort) || errors.Is(err, promptui.ErrInterrupt) {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
			return err
		}
	}

	if err := session.Reset(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Discarded %d candidate(s).\n", count)
	return nil
}
