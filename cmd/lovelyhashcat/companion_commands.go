package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var potfilePath string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <hash-file>",
		Short: "List cracked hashes from a hash file via hashcat --show",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.openServices(cmd, false)
			if err != nil {
				return err
			}
			defer svc.Close()

			entries, err := svc.runner.Show(cmd.Context(), args[0], potfilePath)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, entries)
			}
			printCredentials(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	cmd.Flags().StringVar(&potfilePath, "potfile", "", "Potfile path (defaults to the configured potfile)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newLeftCommand(ctx *commandContext) *cobra.Command {
	var potfilePath string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "left <hash-file>",
		Short: "List hashes hashcat has not cracked yet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.openServices(cmd, false)
			if err != nil {
				return err
			}
			defer svc.Close()

			lines, err := svc.runner.Left(cmd.Context(), args[0], potfilePath)
			if err != nil {
				return err
			}
			if jsonOutput {
				if lines == nil {
					lines = []string{}
				}
				return writeJSON(cmd, lines)
			}
			out := cmd.OutOrStdout()
			if len(lines) == 0 {
				fmt.Fprintln(out, "No uncracked hashes")
				return nil
			}
			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&potfilePath, "potfile", "", "Potfile path (defaults to the configured potfile)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newDevicesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "Show the compute backends and devices hashcat detects",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.openServices(cmd, false)
			if err != nil {
				return err
			}
			defer svc.Close()

			res, err := svc.runner.Devices(cmd.Context())
			out := cmd.OutOrStdout()
			for _, line := range res.Lines {
				fmt.Fprintln(out, line)
			}
			if len(res.Errors) > 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), strings.Join(res.Errors, "\n"))
			}
			return err
		},
	}
}
