package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"lovelyhashcat/internal/events"
	"lovelyhashcat/internal/potfile"
	"lovelyhashcat/internal/services"
	"lovelyhashcat/internal/services/hashcat"
)

type crackFlags struct {
	hashFile       string
	hashes         string
	hashMode       int
	attackMode     string
	wordlists      []string
	rule           string
	mask           string
	charsets       [4]string
	output         string
	potfile        string
	sessionName    string
	devices        []string
	force          bool
	remove         bool
	status         bool
	statusTimer    int
	hwmonTempAbort int
	runtime        int
	skipOutput     bool
	export         string
	json           bool
	verbose        bool
}

func newCrackCommand(ctx *commandContext) *cobra.Command {
	var flags crackFlags

	cmd := &cobra.Command{
		Use:   "crack",
		Short: "Run a hashcat session and report recovered passwords",
		Long: `Run hashcat against a hash file (or hashes given inline) and stream
status, recovered passwords, and the exit outcome. Interrupting the command
stops hashcat gracefully and still reports results found so far.`,
		Example: `  lovelyhashcat crack --hash-file hashes.txt -m 0 -a 0 --wordlist rockyou.txt
  lovelyhashcat crack --hashes 5f4dcc3b5aa765d61d8327deb882cf99 -m 0 -a 3 --mask '?l?l?l?l?l?l?l?l'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(cmd)
			if err != nil {
				return err
			}
			return runCrack(cmd, ctx, req, flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.hashFile, "hash-file", "", "File containing the target hashes")
	f.StringVar(&flags.hashes, "hashes", "", "Hashes given inline, separated by commas or newlines")
	f.IntVarP(&flags.hashMode, "hash-mode", "m", 0, "hashcat hash type (-m)")
	f.StringVarP(&flags.attackMode, "attack-mode", "a", "0", "Attack mode: 0|1|3|6|7 or dictionary, combination, mask, hybrid-wordlist-mask, hybrid-mask-wordlist")
	f.StringArrayVar(&flags.wordlists, "wordlist", nil, "Wordlist path (repeat for combination attacks)")
	f.StringVar(&flags.rule, "rule", "", "Rule file for dictionary attacks")
	f.StringVar(&flags.mask, "mask", "", "Mask for mask and hybrid attacks")
	for i := range flags.charsets {
		f.StringVar(&flags.charsets[i], fmt.Sprintf("charset%d", i+1), "", fmt.Sprintf("Custom charset ?%d", i+1))
	}
	f.StringVar(&flags.output, "output", "", "hashcat --outfile path (defaults next to the hash file)")
	f.StringVar(&flags.potfile, "potfile", "", "Potfile path (defaults to the configured potfile)")
	f.StringVar(&flags.sessionName, "session", "", "hashcat session name")
	f.StringArrayVar(&flags.devices, "device", nil, "Device id to use (repeatable)")
	f.BoolVar(&flags.force, "force", false, "Pass --force to hashcat")
	f.BoolVar(&flags.remove, "remove", false, "Remove cracked hashes from the hash file")
	f.BoolVar(&flags.status, "status", false, "Enable automatic status updates")
	f.IntVar(&flags.statusTimer, "status-timer", 0, "Seconds between status updates (default from config)")
	f.IntVar(&flags.hwmonTempAbort, "hwmon-temp-abort", 0, "Abort when a device reaches this temperature in Celsius")
	f.IntVar(&flags.runtime, "runtime", 0, "Abort the session after this many seconds (default from config)")
	f.BoolVar(&flags.skipOutput, "skip-output", false, "Do not write the auxiliary results file")
	f.StringVar(&flags.export, "export", "", "Write recovered hash:password pairs to this file")
	f.BoolVar(&flags.json, "json", false, "Stream events as JSON lines")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "Echo raw hashcat output and state changes")

	return cmd
}

func (f crackFlags) request(cmd *cobra.Command) (hashcat.CrackRequest, error) {
	mode, err := hashcat.ParseAttackMode(f.attackMode)
	if err != nil {
		return hashcat.CrackRequest{}, err
	}
	req := hashcat.CrackRequest{
		AttackMode:     mode,
		HashFile:       strings.TrimSpace(f.hashFile),
		HashText:       normalizeHashText(f.hashes),
		Wordlists:      f.wordlists,
		RuleFile:       f.rule,
		Mask:           f.mask,
		Charsets:       f.charsets,
		OutputFile:     f.output,
		PotfilePath:    f.potfile,
		SessionName:    f.sessionName,
		Devices:        f.devices,
		Force:          f.force,
		Remove:         f.remove,
		Status:         f.status,
		StatusTimer:    f.statusTimer,
		RuntimeSeconds: f.runtime,
		SkipOutput:     f.skipOutput,
	}
	if cmd.Flags().Changed("hash-mode") {
		req.HashMode = hashcat.IntPtr(f.hashMode)
	}
	if cmd.Flags().Changed("hwmon-temp-abort") {
		req.HWMonTempAbort = hashcat.IntPtr(f.hwmonTempAbort)
	}
	if req.HashFile == "" && req.HashText == "" {
		return hashcat.CrackRequest{}, errors.New("either --hash-file or --hashes is required")
	}
	return req, nil
}

// normalizeHashText turns comma or newline separated hashes into one per line.
func normalizeHashText(value string) string {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	lines := make([]string, 0, len(fields))
	for _, field := range fields {
		if field = strings.TrimSpace(field); field != "" {
			lines = append(lines, field)
		}
	}
	return strings.Join(lines, "\n")
}

func runCrack(cmd *cobra.Command, ctx *commandContext, req hashcat.CrackRequest, flags crackFlags) error {
	svc, err := ctx.openServices(cmd, true)
	if err != nil {
		return err
	}
	defer svc.Close()

	out := cmd.OutOrStdout()
	renderer := newEventRenderer(out, renderOptions{
		JSON:    flags.json,
		Verbose: flags.verbose,
		Live:    !flags.json && isTerminal(out),
	})
	svc.hub.AddSink(renderer)

	sigCtx, stopSignals := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	sess, err := svc.runner.Start(services.WithRequestID(sigCtx, uuid.NewString()), req)
	if err != nil {
		return err
	}
	if !flags.json {
		fmt.Fprintf(out, "Session %s started (%s attack, pid %d)\n",
			shortSessionID(sess.ID()), attackModeLabel(int(req.AttackMode)), svc.runner.PID())
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-sigCtx.Done()
		svc.runner.Stop()
	}()

	res, _, err := svc.runner.Wait(context.Background())
	if err != nil {
		return err
	}
	interrupted := sigCtx.Err() != nil
	stopSignals()
	<-stopped

	found, _, writeErr := renderer.Finish()
	if writeErr != nil {
		return fmt.Errorf("write events: %w", writeErr)
	}

	if flags.export != "" {
		if err := potfile.Export(flags.export, found); err != nil {
			return err
		}
		if !flags.json {
			fmt.Fprintf(out, "Exported %d result(s) to %s\n", len(found), flags.export)
		}
	}

	if !flags.json {
		printCredentials(out, found)
	}

	switch {
	case interrupted:
		return nil
	case res.Err != nil:
		return res.Err
	case hashcatExitFailed(res.Code):
		if line := lastErrorLine(svc.hub, sess.ID()); line != "" {
			return fmt.Errorf("hashcat exited with code %d (%s): %s", res.Code, hashcatExitLabel(res.Code), line)
		}
		return fmt.Errorf("hashcat exited with code %d (%s)", res.Code, hashcatExitLabel(res.Code))
	}
	return nil
}

// lastErrorLine returns the most recent stderr line hashcat printed for the
// session, or "" when it printed none.
func lastErrorLine(hub *events.Hub, sessionID string) string {
	lines := hub.Filter(sessionID, events.KindErrorOutput)
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1].Line
}
