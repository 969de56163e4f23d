package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"lovelyhashcat/internal/events"
	"lovelyhashcat/internal/potfile"
	"lovelyhashcat/internal/services/hashcat"
)

const (
	liveStatusInterval  = 250 * time.Millisecond
	plainStatusInterval = 5 * time.Second
)

type renderOptions struct {
	JSON    bool
	Verbose bool
	// Live redraws a single status line in place; set for terminals.
	Live bool
}

// eventRenderer writes session events for a person or, in JSON mode, as one
// object per line. It also collects recovered credentials in report order.
type eventRenderer struct {
	out  io.Writer
	opts renderOptions

	mu         sync.Mutex
	limiter    *rate.Limiter
	statusLine bool
	found      []potfile.Entry
	exit       *events.Exit
	writeErr   error
}

func newEventRenderer(out io.Writer, opts renderOptions) *eventRenderer {
	interval := plainStatusInterval
	if opts.Live {
		interval = liveStatusInterval
	}
	return &eventRenderer{
		out:     out,
		opts:    opts,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Append implements events.Sink.
func (r *eventRenderer) Append(evt events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch evt.Kind {
	case events.KindPasswordFound:
		r.found = append(r.found, potfile.Entry{Hash: evt.Hash, Password: evt.Password})
	case events.KindProcessFinished:
		if evt.Exit != nil {
			exit := *evt.Exit
			r.exit = &exit
		}
	}

	if r.opts.JSON {
		if err := writeJSONLine(r.out, evt); err != nil && r.writeErr == nil {
			r.writeErr = err
		}
		return
	}
	r.renderText(evt)
}

func (r *eventRenderer) renderText(evt events.Event) {
	switch evt.Kind {
	case events.KindStatus:
		if evt.Status == nil || !r.limiter.Allow() {
			return
		}
		line := formatStatus(evt.Status, evt.RSS)
		if r.opts.Live {
			fmt.Fprint(r.out, ansiClearLine+line)
			r.statusLine = true
			return
		}
		r.println(line)
	case events.KindStatusComplete:
		r.println("Session summary received")
	case events.KindPasswordFound:
		r.println(fmt.Sprintf("Recovered %s:%s (%s)", evt.Hash, evt.Password, evt.Source))
	case events.KindProcessFinished:
		if evt.Exit != nil {
			r.println(fmt.Sprintf("hashcat finished: %s, exit %d (%s) after %s",
				strings.ToLower(evt.Exit.Status), evt.Exit.Code, hashcatExitLabel(evt.Exit.Code),
				formatDuration(evt.Exit.Elapsed())))
		}
	case events.KindNotice:
		r.println("Notice: " + evt.Line)
	case events.KindError:
		msg := evt.Error
		if evt.ErrorKind != "" {
			msg = fmt.Sprintf("%s (%s)", msg, evt.ErrorKind)
		}
		r.println("Error: " + msg)
	case events.KindErrorOutput:
		r.println("hashcat: " + evt.Line)
	case events.KindState:
		if r.opts.Verbose {
			r.println("Session " + evt.State)
		}
	case events.KindOutput:
		if r.opts.Verbose && !hashcat.IsStatusLine(evt.Line) {
			r.println(evt.Line)
		}
	}
}

// println ends any in-place status line before writing a full line.
func (r *eventRenderer) println(line string) {
	if r.statusLine {
		fmt.Fprint(r.out, ansiClearLine)
		r.statusLine = false
	}
	fmt.Fprintln(r.out, line)
}

// Finish clears the live status line and returns the collected results.
func (r *eventRenderer) Finish() ([]potfile.Entry, *events.Exit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.statusLine {
		fmt.Fprint(r.out, ansiClearLine)
		r.statusLine = false
	}
	found := append([]potfile.Entry(nil), r.found...)
	return found, r.exit, r.writeErr
}

func formatStatus(snap *hashcat.StatusSnapshot, rss uint64) string {
	parts := make([]string, 0, 5)
	if snap.Status != "" {
		parts = append(parts, snap.Status)
	}
	if snap.Progress != nil {
		parts = append(parts, "progress "+snap.Progress.String())
	}
	if snap.Recovered != nil {
		parts = append(parts, "recovered "+snap.Recovered.String())
	}
	if snap.Speed != "" {
		parts = append(parts, snap.Speed)
	}
	if rss > 0 {
		parts = append(parts, "rss "+formatBytes(rss))
	}
	if len(parts) == 0 {
		return "Running"
	}
	return strings.Join(parts, " | ")
}
