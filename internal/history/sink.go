package history

import (
	"context"
	"log/slog"
	"time"

	"lovelyhashcat/internal/events"
	"lovelyhashcat/internal/logging"
)

const sinkWriteTimeout = 5 * time.Second

// Sink persists session events published on a hub. Write failures are logged
// and never block publishing.
type Sink struct {
	store  *Store
	logger *slog.Logger
}

var _ events.Sink = (*Sink)(nil)

// NewSink returns a hub sink backed by store.
func NewSink(store *Store, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Sink{store: store, logger: logging.NewComponentLogger(logger, "history")}
}

// Append implements events.Sink.
func (s *Sink) Append(evt events.Event) {
	if s == nil || s.store == nil || evt.SessionID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), sinkWriteTimeout)
	defer cancel()

	var err error
	switch evt.Kind {
	case events.KindPasswordFound:
		_, err = s.store.AddResult(ctx, evt.SessionID, evt.Hash, evt.Password, string(evt.Source), evt.Timestamp)
	case events.KindProcessFinished:
		if evt.Exit != nil {
			err = s.store.FinishSession(ctx, evt.SessionID, *evt.Exit)
		}
	case events.KindState:
		err = s.store.UpdateState(ctx, evt.SessionID, evt.State)
	case events.KindError:
		err = s.store.RecordError(ctx, evt.SessionID, evt.Error)
	default:
		return
	}
	if err != nil {
		logging.WarnWithContext(s.logger, "history write failed", "history_write_failed",
			logging.String(logging.FieldSessionID, evt.SessionID),
			logging.String("event_kind", string(evt.Kind)),
			logging.Error(err),
			logging.String(logging.FieldImpact, "session history incomplete"),
		)
	}
}
