// Package application writes to the sync ledger.
package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/rai/bot-order-bridge/modules/ledger/domain"
)

// Recorder appends ledger entries. It never returns an error: a lost audit row
// is logged at warn and the caller carries on.
type Recorder struct {
	repo   domain.Repository
	now    func() time.Time
	logger *slog.Logger
}

func NewRecorder(repo domain.Repository, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{repo: repo, now: time.Now, logger: logger}
}

// Record appends one entry for botOrderID.
func (r *Recorder) Record(ctx context.Context, botOrderID string, op domain.Operation, entityID *string, outcome domain.Outcome, message string) {
	entry, err := domain.NewEntry(botOrderID, op, entityID, outcome, message, r.now())
	if err != nil {
		r.logger.Warn("ledger entry rejected",
			slog.String("bot_order_id", botOrderID),
			slog.String("operation", string(op)),
			slog.Any("error", err),
		)
		return
	}
	if err := r.repo.Append(ctx, entry); err != nil {
		r.logger.Warn("ledger append failed",
			slog.String("bot_order_id", botOrderID),
			slog.String("operation", string(op)),
			slog.String("outcome", string(outcome)),
			slog.Any("error", err),
		)
	}
}

// For returns a recorder bound to one bot order.
func (r *Recorder) For(botOrderID string) *Scoped {
	return &Scoped{recorder: r, botOrderID: botOrderID}
}

// Scoped records entries for a single bot order.
type Scoped struct {
	recorder   *Recorder
	botOrderID string
}

func (s *Scoped) Success(ctx context.Context, op domain.Operation, entityID string, message string) {
	s.recorder.Record(ctx, s.botOrderID, op, optional(entityID), domain.OutcomeSuccess, message)
}

func (s *Scoped) Failure(ctx context.Context, op domain.Operation, entityID string, err error) {
	s.recorder.Record(ctx, s.botOrderID, op, optional(entityID), domain.OutcomeFailure, err.Error())
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
