package cracker

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"lovelyhashcat/internal/events"
	"lovelyhashcat/internal/logging"
	"lovelyhashcat/internal/potfile"
	"lovelyhashcat/internal/services"
	"lovelyhashcat/internal/services/hashcat"
	"lovelyhashcat/internal/session"
)

// CompanionResult is the captured output of a short informational run.
type CompanionResult struct {
	Lines  []string
	Errors []string
	Exit   hashcat.ExitResult
}

// Show runs `hashcat --show` and returns the cracked pairs it prints.
func (r *Runner) Show(ctx context.Context, hashFile, potfilePath string) ([]potfile.Entry, error) {
	builder, err := r.builder()
	if err != nil {
		return nil, err
	}
	if hashFile, err = absPath(hashFile); err != nil {
		return nil, err
	}
	pot, err := absPath(r.potfileOrDefault(potfilePath, builder))
	if err != nil {
		return nil, err
	}
	cmd, err := builder.Show(hashFile, pot)
	if err != nil {
		return nil, err
	}
	res, err := r.runCompanion(ctx, cmd, "")
	if err != nil {
		return nil, err
	}
	return filterShowLines(hashFile, res.Lines)
}

// Left runs `hashcat --left` and returns the uncracked hashes it prints.
func (r *Runner) Left(ctx context.Context, hashFile, potfilePath string) ([]string, error) {
	builder, err := r.builder()
	if err != nil {
		return nil, err
	}
	if hashFile, err = absPath(hashFile); err != nil {
		return nil, err
	}
	pot, err := absPath(r.potfileOrDefault(potfilePath, builder))
	if err != nil {
		return nil, err
	}
	cmd, err := builder.Left(hashFile, pot)
	if err != nil {
		return nil, err
	}
	res, err := r.runCompanion(ctx, cmd, "")
	if err != nil {
		return nil, err
	}
	return res.Lines, nil
}

// Devices runs the backend enumeration and returns its output lines.
func (r *Runner) Devices(ctx context.Context) (CompanionResult, error) {
	builder, err := r.builder()
	if err != nil {
		return CompanionResult{}, err
	}
	cmd, err := builder.DeviceInfo()
	if err != nil {
		return CompanionResult{}, err
	}
	return r.runCompanion(ctx, cmd, "")
}

// autoShow displays potfile hits for sess through a companion process. The
// session's own process handle is left untouched.
func (r *Runner) autoShow(sess *session.Session, logger *slog.Logger) {
	builder, err := r.builder()
	if err != nil {
		r.publishError(sess.ID(), err)
		return
	}
	cmd, err := builder.Show(sess.HashFile(), sess.PotfilePath())
	if err != nil {
		r.publishError(sess.ID(), err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.opts.CompanionTimeout)
	defer cancel()

	res, err := r.runCompanion(ctx, cmd, sess.ID())
	if err != nil {
		r.publishError(sess.ID(), err)
		logging.WarnWithContext(logger, "auto-show pass failed", "auto_show_failed", logging.Error(err))
		return
	}
	entries, err := filterShowLines(sess.HashFile(), res.Lines)
	if err != nil {
		r.publishError(sess.ID(), err)
		return
	}
	found := 0
	for _, entry := range entries {
		if !sess.MarkReported(entry.Hash) {
			continue
		}
		found++
		r.hub.Publish(events.Event{
			Kind:      events.KindPasswordFound,
			SessionID: sess.ID(),
			Hash:      entry.Hash,
			Password:  entry.Password,
			Source:    events.SourceShow,
		})
	}
	logger.Debug("auto-show pass complete",
		logging.String(logging.FieldEventType, "auto_show"),
		logging.Int("lines", len(res.Lines)),
		logging.Int("new", found),
	)
}

// runCompanion executes cmd to completion, stopping it if ctx ends first.
// Lines are published as output events when sessionID is set.
func (r *Runner) runCompanion(ctx context.Context, cmd hashcat.Command, sessionID string) (CompanionResult, error) {
	var (
		mu  sync.Mutex
		out CompanionResult
	)
	handler := func(stream hashcat.Stream, chunk string) {
		lines := hashcat.SplitLines(chunk)
		mu.Lock()
		if stream == hashcat.Stderr {
			out.Errors = append(out.Errors, lines...)
		} else {
			out.Lines = append(out.Lines, lines...)
		}
		mu.Unlock()
		if sessionID == "" {
			return
		}
		kind := events.KindOutput
		if stream == hashcat.Stderr {
			kind = events.KindErrorOutput
		}
		for _, line := range lines {
			r.hub.Publish(events.Event{Kind: kind, SessionID: sessionID, Line: line})
		}
	}

	proc, err := r.supervisor.Start(cmd, handler)
	if err != nil {
		return CompanionResult{}, err
	}
	select {
	case <-proc.Done():
	case <-ctx.Done():
		proc.Stop()
		<-proc.Done()
		return CompanionResult{}, services.Wrap(services.ErrProcessTimeout, "hashcat-runner", "companion",
			strings.Join(cmd.Args, " "), ctx.Err())
	}

	res := proc.Wait()
	mu.Lock()
	defer mu.Unlock()
	out.Exit = res
	if res.Err != nil {
		return out, res.Err
	}
	return out, nil
}

func (r *Runner) builder() (*hashcat.Builder, error) {
	return hashcat.NewBuilder(r.opts.HashcatPath, hashcat.WithRuntimeSeconds(r.opts.RuntimeSeconds))
}

func (r *Runner) potfileOrDefault(path string, builder *hashcat.Builder) string {
	if strings.TrimSpace(path) != "" {
		return path
	}
	if r.opts.PotfilePath != "" {
		return r.opts.PotfilePath
	}
	return builder.DefaultPotfile()
}

// filterShowLines keeps hash:password lines whose hash belongs to hashFile,
// dropping banners and notices hashcat prints alongside them.
func filterShowLines(hashFile string, lines []string) ([]potfile.Entry, error) {
	targets, err := potfile.ReadHashKeys(hashFile)
	if err != nil {
		return nil, err
	}
	matcher := potfile.NewMatcher(targets)
	entries := make([]potfile.Entry, 0, len(lines))
	for _, line := range lines {
		if hashcat.IsStatusLine(line) {
			continue
		}
		entry, ok := potfile.ParseLine(line)
		if !ok || !matcher.Relevant(entry.Hash) {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
