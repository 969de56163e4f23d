package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"lovelyhashcat/internal/history"
	"lovelyhashcat/internal/potfile"
	"lovelyhashcat/internal/services/hashcat"
)

func newResultsCommand(ctx *commandContext) *cobra.Command {
	var sessionID string
	var limit int
	var exportPath string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "results",
		Short: "Show recorded sessions and the passwords they recovered",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if sessionID == "" {
				if exportPath != "" {
					return errors.New("--export requires --session")
				}
				sessions, err := store.ListSessions(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					if sessions == nil {
						sessions = []*history.Session{}
					}
					return writeJSON(cmd, sessions)
				}
				printSessions(cmd, sessions)
				return nil
			}

			sess, err := store.FindSession(cmd.Context(), sessionID)
			if err != nil {
				return err
			}
			results, err := store.Results(cmd.Context(), sess.ID)
			if err != nil {
				return err
			}
			if exportPath != "" {
				if err := potfile.Export(exportPath, resultEntries(results)); err != nil {
					return err
				}
			}
			if jsonOutput {
				if results == nil {
					results = []*history.Result{}
				}
				return writeJSON(cmd, map[string]any{"session": sess, "results": results})
			}

			out := cmd.OutOrStdout()
			printSessionDetail(cmd, sess)
			printHistoryResults(out, results)
			if exportPath != "" {
				fmt.Fprintf(out, "Exported %d result(s) to %s\n", len(results), exportPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "Session id or unique id prefix")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum sessions to list (0 for all)")
	cmd.Flags().StringVar(&exportPath, "export", "", "Write the session's hash:password pairs to this file")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	cmd.AddCommand(newResultsClearCommand(ctx))
	return cmd
}

func newResultsClearCommand(ctx *commandContext) *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded sessions and results",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return errors.New("refusing to clear history without --yes")
			}
			store, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()
			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d session(s)\n", removed)
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirm, "yes", false, "Confirm deletion")
	return cmd
}

func openHistory(ctx *commandContext) (*history.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.History.Enabled {
		return nil, errors.New("session history is disabled ([history] enabled = false)")
	}
	return history.Open(cfg)
}

func printSessions(cmd *cobra.Command, sessions []*history.Session) {
	out := cmd.OutOrStdout()
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No sessions recorded")
		return
	}
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{
			shortSessionID(s.ID),
			formatTime(s.StartedAt),
			attackModeLabel(s.AttackMode),
			hashModeLabel(s.HashMode),
			titleLabel(s.State),
			exitLabel(s),
			itoa(s.ResultCount),
			formatDuration(s.Elapsed()),
		})
	}
	columns := []column{
		{title: "Session"},
		{title: "Started"},
		{title: "Attack"},
		{title: "Mode", right: true},
		{title: "State"},
		{title: "Exit"},
		{title: "Results", right: true},
		{title: "Elapsed", right: true},
	}
	fmt.Fprintln(out, renderTable(columns, rows))
}

func printSessionDetail(cmd *cobra.Command, s *history.Session) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Session:   %s\n", s.ID)
	fmt.Fprintf(out, "Attack:    %s (-a %d)\n", attackModeLabel(s.AttackMode), s.AttackMode)
	fmt.Fprintf(out, "Hash mode: %s\n", hashModeLabel(s.HashMode))
	if s.HashFile != "" {
		fmt.Fprintf(out, "Hash file: %s\n", s.HashFile)
	}
	if s.PotfilePath != "" {
		fmt.Fprintf(out, "Potfile:   %s\n", s.PotfilePath)
	}
	fmt.Fprintf(out, "State:     %s\n", titleLabel(s.State))
	fmt.Fprintf(out, "Exit:      %s\n", exitLabel(s))
	fmt.Fprintf(out, "Started:   %s\n", formatTime(s.StartedAt))
	fmt.Fprintf(out, "Elapsed:   %s\n", formatDuration(s.Elapsed()))
	if s.ErrorMessage != "" {
		fmt.Fprintf(out, "Error:     %s\n", s.ErrorMessage)
	}
}

func hashModeLabel(mode *int) string {
	if mode == nil {
		return "-"
	}
	return itoa(*mode)
}

func exitLabel(s *history.Session) string {
	if s.ExitCode == nil {
		return "-"
	}
	label := fmt.Sprintf("%d %s", *s.ExitCode, hashcatExitLabel(*s.ExitCode))
	if s.ExitStatus == string(hashcat.ExitCrashed) {
		label += " (crashed)"
	}
	return label
}
