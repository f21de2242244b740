// Package worker runs the periodic completion refresh that keeps the
// cached dashboard snapshot warm between on-demand requests.
package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/outlet-ops/internal/events"
	"github.com/spec-kit/outlet-ops/internal/service"
)

// RefreshWorker recomputes today's completion snapshot on a fixed
// interval. Refresh failures are logged and the loop keeps running;
// the dashboard falls back to the last cached snapshot until a tick
// succeeds again.
type RefreshWorker struct {
	completion *service.CompletionService
	interval   time.Duration
	logger     *zap.Logger
}

// NewRefreshWorker constructs the worker.
func NewRefreshWorker(completion *service.CompletionService, interval time.Duration, logger *zap.Logger) *RefreshWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &RefreshWorker{
		completion: completion,
		interval:   interval,
		logger:     logger,
	}
}

// Run blocks until ctx is cancelled, refreshing on each tick. An
// immediate refresh runs before the first tick so a fresh deploy does
// not wait a full interval for data.
func (w *RefreshWorker) Run(ctx context.Context) {
	w.refresh(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("refresh worker stopping")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *RefreshWorker) refresh(ctx context.Context) {
	if err := w.completion.Refresh(ctx); err != nil {
		w.logger.Warn("scheduled completion refresh failed", zap.Error(err))
		return
	}
	w.logger.Debug("scheduled completion refresh done")
}

// RegisterEventLoggers attaches audit logging to the domain event
// stream.
func RegisterEventLoggers(dispatcher events.Dispatcher, logger *zap.Logger) {
	logEvent := func(_ context.Context, event events.Event) error {
		logger.Info("domain event",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)),
			zap.String("ticket_key", event.TicketKey),
			zap.String("actor", event.Actor))
		return nil
	}
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketAssigned,
		events.EventTicketReclassified,
		events.EventTicketStatusChanged,
		events.EventCompletionRefreshed,
	} {
		dispatcher.Subscribe(eventType, logEvent)
	}
}
