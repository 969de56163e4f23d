package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"lovelyhashcat/internal/deps"
)

const hostSampleWindow = 200 * time.Millisecond

type doctorReport struct {
	Hashcat []deps.Status      `json:"hashcat"`
	Layout  []deps.Status      `json:"layout"`
	Host    *deps.HostSnapshot `json:"host,omitempty"`
	Potfile string             `json:"potfile"`
}

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the hashcat installation and host resources",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			report := doctorReport{
				Hashcat: deps.CheckBinaries(deps.HashcatRequirements(cfg.Paths.HashcatPath)),
				Layout:  deps.CheckHashcatLayout(cfg.Paths.HashcatPath),
				Potfile: cfg.PotfilePath(),
			}
			host, hostErr := deps.Host(hostSampleWindow)
			if hostErr == nil {
				report.Host = &host
			}
			if jsonOutput {
				return writeJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderSectionHeader("hashcat", colorize))
			missing := 0
			for _, status := range report.Hashcat {
				fmt.Fprintln(out, renderStatusLine(status.Name, dependencyKind(status), dependencyMessage(status), colorize))
				if !status.Available && !status.Optional {
					missing++
				}
			}
			// Layout gaps are warnings.
			for _, status := range report.Layout {
				status.Optional = true
				fmt.Fprintln(out, renderStatusLine(status.Name, dependencyKind(status), dependencyMessage(status), colorize))
			}
			fmt.Fprintln(out, renderStatusLine("potfile", statusInfo, report.Potfile, colorize))

			fmt.Fprintln(out, renderSectionHeader("host", colorize))
			if hostErr != nil {
				fmt.Fprintln(out, renderStatusLine("resources", statusWarn, hostErr.Error(), colorize))
			} else {
				cpuText := fmt.Sprintf("%d logical, %.0f%% busy", host.LogicalCPUs, host.CPUPercent)
				if host.CPUModel != "" {
					cpuText = host.CPUModel + ", " + cpuText
				}
				fmt.Fprintln(out, renderStatusLine("platform", statusInfo, host.OS+"/"+host.Arch, colorize))
				fmt.Fprintln(out, renderStatusLine("cpu", statusInfo, cpuText, colorize))
				fmt.Fprintln(out, renderStatusLine("memory", statusInfo,
					fmt.Sprintf("%s available of %s", formatBytes(host.MemoryAvailable), formatBytes(host.MemoryTotal)), colorize))
			}

			if missing > 0 {
				return fmt.Errorf("%d required check(s) failed", missing)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func dependencyKind(status deps.Status) statusKind {
	switch {
	case status.Available:
		return statusOK
	case status.Optional:
		return statusWarn
	default:
		return statusError
	}
}

func dependencyMessage(status deps.Status) string {
	if status.Available {
		return status.Command
	}
	if status.Detail != "" {
		return status.Detail
	}
	return "unavailable"
}
