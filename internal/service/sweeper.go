package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fathima-sithara/chatroom-service/internal/events"
	"github.com/fathima-sithara/chatroom-service/internal/metrics"
	"github.com/fathima-sithara/chatroom-service/internal/models"
	"github.com/fathima-sithara/chatroom-service/internal/repository"
	"github.com/fathima-sithara/chatroom-service/internal/utils"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

type SweeperConfig struct {
	Interval       time.Duration
	Inactivity     time.Duration
	RemoveInactive bool
}

// Sweeper periodically removes participants whose last heartbeat is older
// than the inactivity window and announces their departure.
type Sweeper struct {
	participants repository.ParticipantRepository
	messages     repository.MessageRepository
	publisher    events.Publisher
	metrics      *metrics.Metrics
	log          *zap.Logger
	cfg          SweeperConfig
	now          func() time.Time
}

func NewSweeper(
	participants repository.ParticipantRepository,
	messages repository.MessageRepository,
	publisher events.Publisher,
	m *metrics.Metrics,
	log *zap.Logger,
	cfg SweeperConfig,
) *Sweeper {
	return &Sweeper{
		participants: participants,
		messages:     messages,
		publisher:    publisher,
		metrics:      m,
		log:          log,
		cfg:          cfg,
		now:          time.Now,
	}
}

// Threshold is the newest lastStatus still considered inactive at now.
func (s *Sweeper) Threshold(now time.Time) int64 {
	return utils.NowMillis(now) - s.cfg.Inactivity.Milliseconds()
}

// Run sweeps on every tick until ctx is cancelled. A failed sweep is logged
// and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.log.Info("presence sweeper started",
		zap.Duration("interval", s.cfg.Interval),
		zap.Duration("inactivity", s.cfg.Inactivity),
		zap.Bool("remove_inactive", s.cfg.RemoveInactive),
	)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("presence sweeper stopped")
			return
		case <-ticker.C:
			removed, err := s.Sweep(ctx)
			if err != nil {
				s.log.Error("sweep failed", zap.Int("removed", removed), zap.Error(err))
				continue
			}
			if removed > 0 {
				s.log.Info("inactive participants removed", zap.Int("removed", removed))
			}
		}
	}
}

// Sweep runs a single pass and returns how many participants were removed.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	now := s.now()
	threshold := s.Threshold(now)

	stale, err := s.participants.FindInactive(ctx, threshold)
	if err != nil {
		s.metrics.SweepFailed()
		return 0, fmt.Errorf("find inactive participants: %w", err)
	}
	if !s.cfg.RemoveInactive {
		for _, p := range stale {
			s.log.Debug("inactive participant detected", zap.String("name", p.Name), zap.Int64("last_status", p.LastStatus))
		}
		return 0, nil
	}

	var result *multierror.Error
	removed := 0
	for _, p := range stale {
		ok, err := s.participants.DeleteInactive(ctx, p.Name, threshold)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("remove %q: %w", p.Name, err))
			continue
		}
		if !ok {
			continue
		}
		removed++

		msg := models.StatusMessage(p.Name, models.LeaveText, utils.Clock(now))
		if err := s.messages.Insert(ctx, msg); err != nil {
			result = multierror.Append(result, fmt.Errorf("announce departure of %q: %w", p.Name, err))
			continue
		}
		publish(ctx, s.publisher, s.log, events.TypeParticipantLeft, *msg)
	}

	s.metrics.ParticipantsSwept(removed)
	return removed, result.ErrorOrNil()
}
