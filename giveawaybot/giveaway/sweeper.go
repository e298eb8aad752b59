package giveaway

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/giveaway-bot/giveawaybot/database/models"
	"github.com/disgoorg/giveaway-bot/giveawaybot/database/repositories"
	"github.com/disgoorg/giveaway-bot/giveawaybot/logger"
	"golang.org/x/sync/semaphore"
)

const finalizeTimeout = 30 * time.Second

// Finalizer ends a single expired giveaway. It is the Manager in
// production; tests use a recorder.
type Finalizer interface {
	End(ctx context.Context, giveaway *models.Giveaway) bool
}

// Sweeper periodically scans for giveaways past their end time and hands
// each one to a bounded worker pool for finalization. A failing tick is
// logged and the next tick runs normally; correctness under overlapping
// work relies on the repository's atomic delete claim.
type Sweeper struct {
	giveaways  repositories.GiveawayRepository
	finalizer  Finalizer
	interval   time.Duration
	maxWorkers int64
	workers    *semaphore.Weighted
	shutdown   chan struct{}
	done       chan struct{}
	now        func() time.Time
}

func NewSweeper(giveaways repositories.GiveawayRepository, finalizer Finalizer, interval time.Duration, maxWorkers int) *Sweeper {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &Sweeper{
		giveaways:  giveaways,
		finalizer:  finalizer,
		interval:   interval,
		maxWorkers: int64(maxWorkers),
		workers:    semaphore.NewWeighted(int64(maxWorkers)),
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		now:        time.Now,
	}
}

// Start begins sweeping. The first sweep runs immediately, then every
// interval until Shutdown.
func (s *Sweeper) Start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.sweep()
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.shutdown:
				return
			}
		}
	}()
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
	defer cancel()

	due, err := s.giveaways.GetEndingBefore(ctx, s.now())
	if err != nil {
		slog.Error("Sweep failed to list expired giveaways",
			slog.String("type", "sweep"),
			slog.Any("error", err))
		return
	}

	for _, giveaway := range due {
		if err := s.workers.Acquire(ctx, 1); err != nil {
			slog.Warn("Sweep gave up waiting for a worker",
				slog.String("type", "sweep"),
				slog.Any("error", err))
			return
		}
		go func(g *models.Giveaway) {
			defer s.workers.Release(1)

			fctx, fcancel := context.WithTimeout(context.Background(), finalizeTimeout)
			defer fcancel()

			if s.finalizer.End(fctx, g) {
				logger.LogSweep("Giveaway ended",
					slog.String("message_id", g.MessageID.String()),
					slog.String("guild_id", g.GuildID.String()))
			} else {
				slog.Error("Giveaway finalization failed",
					slog.String("type", "sweep"),
					slog.String("message_id", g.MessageID.String()))
			}
		}(giveaway)
	}
}

// Shutdown stops the tick loop and waits for in-flight finalizations to
// drain, or for ctx to expire.
func (s *Sweeper) Shutdown(ctx context.Context) error {
	close(s.shutdown)

	select {
	case <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := s.workers.Acquire(ctx, s.maxWorkers); err != nil {
		return err
	}
	s.workers.Release(s.maxWorkers)
	return nil
}
