package cracker

import (
	"log/slog"
	"sync"
	"time"

	"lovelyhashcat/internal/deps"
	"lovelyhashcat/internal/events"
	"lovelyhashcat/internal/logging"
	"lovelyhashcat/internal/services/hashcat"
	"lovelyhashcat/internal/session"
)

const summaryTaskKey = "summary"

// outputHandler turns supervisor chunks for one session into events and
// scheduled follow-up work.
type outputHandler struct {
	runner *Runner
	sess   *session.Session
	logger *slog.Logger

	mu      sync.Mutex
	sampler *logging.ProgressSampler
}

func newOutputHandler(r *Runner, sess *session.Session, logger *slog.Logger) *outputHandler {
	return &outputHandler{
		runner:  r,
		sess:    sess,
		logger:  logger,
		sampler: logging.NewProgressSampler(5),
	}
}

func (h *outputHandler) handle(stream hashcat.Stream, chunk string) {
	if stream == hashcat.Stderr {
		for _, line := range hashcat.SplitLines(chunk) {
			h.runner.hub.Publish(events.Event{Kind: events.KindErrorOutput, SessionID: h.sess.ID(), Line: line})
			h.logger.Debug("hashcat stderr", logging.String("line", line))
		}
		return
	}

	for _, line := range hashcat.SplitLines(chunk) {
		h.runner.hub.Publish(events.Event{Kind: events.KindOutput, SessionID: h.sess.ID(), Line: line})
	}

	result := hashcat.ParseChunk(chunk)
	if result.Snapshot != nil {
		h.onStatus(result.Snapshot)
	}
	for _, cred := range result.Cracked {
		h.onCredential(cred)
	}
	if result.AllInPotfile {
		h.onAllInPotfile()
	}
	if result.SessionSummary {
		h.onSummary()
	}
}

func (h *outputHandler) onStatus(snap *hashcat.StatusSnapshot) {
	rss := h.childRSS()
	h.runner.hub.Publish(events.Event{Kind: events.KindStatus, SessionID: h.sess.ID(), Status: snap, RSS: rss})

	percent := -1.0
	if snap.ProgressPercent != nil {
		percent = *snap.ProgressPercent
	}
	h.mu.Lock()
	shouldLog := h.sampler.ShouldLog(percent, snap.Status)
	h.mu.Unlock()
	if shouldLog {
		attrs := []logging.Attr{logging.String(logging.FieldEventType, "status")}
		if snap.Status != "" {
			attrs = append(attrs, logging.String("status", snap.Status))
		}
		if snap.Progress != nil {
			attrs = append(attrs, logging.String("progress", snap.Progress.String()))
		}
		if snap.Recovered != nil {
			attrs = append(attrs, logging.String("recovered", snap.Recovered.String()))
		}
		if snap.Speed != "" {
			attrs = append(attrs, logging.String("speed", snap.Speed))
		}
		if rss > 0 {
			attrs = append(attrs, logging.Uint64("rss_bytes", rss))
		}
		h.logger.Info("hashcat progress", logging.Args(attrs...)...)
	}

	if snap.Recovered != nil && snap.Recovered.Done > 0 && h.sess.ArmRecheck() {
		delay := h.runner.opts.RecheckDelay
		h.sess.Scheduler().After(delay, func() {
			h.runner.reconcile(h.sess, "recovered", h.logger)
		})
		h.logger.Debug("potfile recheck scheduled", logging.Duration("delay", delay))
	}
}

func (h *outputHandler) onCredential(cred hashcat.Credential) {
	if !h.sess.MarkReported(cred.Hash) {
		return
	}
	h.runner.hub.Publish(events.Event{
		Kind:      events.KindPasswordFound,
		SessionID: h.sess.ID(),
		Hash:      cred.Hash,
		Password:  cred.Password,
		Source:    events.SourceStream,
	})
	h.logger.Info("password found in output",
		logging.String(logging.FieldEventType, "password_found"),
		logging.String("source", string(events.SourceStream)),
	)
}

func (h *outputHandler) onAllInPotfile() {
	if !h.sess.AllowAutoShow(time.Now(), h.runner.opts.AutoShowInterval) {
		return
	}
	h.sess.Scheduler().After(0, func() {
		h.runner.autoShow(h.sess, h.logger)
	})
}

func (h *outputHandler) onSummary() {
	h.sess.Scheduler().Debounce(summaryTaskKey, h.runner.opts.SummaryDelay, func() {
		h.runner.hub.Publish(events.Event{Kind: events.KindStatusComplete, SessionID: h.sess.ID()})
		h.runner.reconcile(h.sess, "summary", h.logger)
	})
}

// childRSS samples the session child's resident memory. Output can arrive
// before the process is attached or after it exits; both yield 0.
func (h *outputHandler) childRSS() uint64 {
	pid := h.sess.Process().PID()
	if pid == 0 {
		return 0
	}
	rss, err := deps.ProcessRSS(pid)
	if err != nil {
		h.logger.Debug("rss sample failed", logging.Int(logging.FieldPID, pid), logging.Error(err))
		return 0
	}
	return rss
}
