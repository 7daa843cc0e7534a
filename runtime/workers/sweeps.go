package workers

import (
	"context"
	"log/slog"
	"team-relay/domain"
	"time"
)

type LivenessSweeper interface {
	SweepLiveness(ctx context.Context) []string
}

type QuestionExpirer interface {
	ExpireQuestions(ctx context.Context) []domain.QuestionID
}

// LivenessSweepWorker terminates silent connections on every tick.
type LivenessSweepWorker struct {
	log      *slog.Logger
	sweeper  LivenessSweeper
	interval time.Duration
}

func NewLivenessSweepWorker(log *slog.Logger, sweeper LivenessSweeper, interval time.Duration) *LivenessSweepWorker {
	return &LivenessSweepWorker{log: log, sweeper: sweeper, interval: interval}
}

func (w *LivenessSweepWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping liveness sweep")
			return nil
		case <-ticker.C:
			if terminated := w.sweeper.SweepLiveness(ctx); len(terminated) > 0 {
				w.log.Info("Silent connections terminated", "count", len(terminated))
			}
		}
	}
}

// QuestionTimeoutWorker moves overdue pending questions to TIMEOUT.
type QuestionTimeoutWorker struct {
	log      *slog.Logger
	expirer  QuestionExpirer
	interval time.Duration
}

func NewQuestionTimeoutWorker(log *slog.Logger, expirer QuestionExpirer, interval time.Duration) *QuestionTimeoutWorker {
	return &QuestionTimeoutWorker{log: log, expirer: expirer, interval: interval}
}

func (w *QuestionTimeoutWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping question timeout sweep")
			return nil
		case <-ticker.C:
			if expired := w.expirer.ExpireQuestions(ctx); len(expired) > 0 {
				w.log.Debug("Questions timed out", "count", len(expired))
			}
		}
	}
}
