package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lovelyhashcat/internal/potfile"
)

func newPotfileCommand(ctx *commandContext) *cobra.Command {
	var potfilePath string
	var exportPath string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "potfile <hash-file>",
		Short: "List potfile entries that belong to a hash file",
		Long: `Read the potfile directly (without running hashcat) and list the
credentials whose hash appears in the given hash file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := strings.TrimSpace(potfilePath)
			if path == "" {
				path = cfg.PotfilePath()
			}

			entries, err := potfile.LoadCracked(args[0], path)
			if err != nil {
				return err
			}
			if exportPath != "" {
				if err := potfile.Export(exportPath, entries); err != nil {
					return err
				}
			}
			if jsonOutput {
				if entries == nil {
					entries = []potfile.Entry{}
				}
				return writeJSON(cmd, entries)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Potfile: %s\n", path)
			printCredentials(out, entries)
			if exportPath != "" {
				fmt.Fprintf(out, "Exported %d result(s) to %s\n", len(entries), exportPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&potfilePath, "potfile", "", "Potfile path (defaults to the configured potfile)")
	cmd.Flags().StringVar(&exportPath, "export", "", "Write the matching hash:password pairs to this file")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
