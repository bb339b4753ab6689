package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"rewards-mini-app-backend/internal/common/logger"
	"rewards-mini-app-backend/internal/features/raffle/models"
	"rewards-mini-app-backend/internal/features/raffle/repository"
)

// ExpirationService закрывает открытые розыгрыши с истекшим дедлайном.
// Закрытие ленивое в обоих смыслах: Join сам отвергает истекшие розыгрыши,
// а фоновая проверка лишь переводит их в closed для списков и розыгрыша призов.
type ExpirationService struct {
	ctx        context.Context
	cancel     context.CancelFunc
	repo       repository.RaffleRepository
	raffles    RaffleService
	interval   time.Duration
	processing sync.Map
	semaphore  chan struct{}
	wg         sync.WaitGroup
	log        zerolog.Logger
}

func NewExpirationService(repo repository.RaffleRepository, raffles RaffleService, interval time.Duration) *ExpirationService {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ExpirationService{
		ctx:       ctx,
		cancel:    cancel,
		repo:      repo,
		raffles:   raffles,
		interval:  interval,
		semaphore: make(chan struct{}, MaxConcurrentSweeps),
		log:       logger.With("raffle-expiration"),
	}
}

func (s *ExpirationService) Start() {
	s.log.Info().Dur("interval", s.interval).Msg("starting expiration service")
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := s.sweep(); err != nil {
					s.log.Error().Err(err).Msg("expiration sweep failed")
				}
			case <-s.ctx.Done():
				return
			}
		}
	}()
}

func (s *ExpirationService) Stop() {
	s.log.Info().Msg("stopping expiration service")
	s.cancel()
	s.wg.Wait()
	s.log.Info().Msg("expiration service stopped")
}

func (s *ExpirationService) sweep() error {
	ids, err := s.repo.OpenIDs(s.ctx)
	if err != nil {
		return err
	}

	for _, raffleID := range ids {
		if _, exists := s.processing.LoadOrStore(raffleID, true); exists {
			continue
		}

		go func(id string) {
			defer s.processing.Delete(id)

			select {
			case s.semaphore <- struct{}{}:
				defer func() { <-s.semaphore }()
			case <-s.ctx.Done():
				return
			}

			if err := s.closeIfExpired(id); err != nil {
				s.log.Error().Err(err).Str("raffle_id", id).Msg("failed to close expired raffle")
			}
		}(raffleID)
	}

	return nil
}

func (s *ExpirationService) closeIfExpired(raffleID string) error {
	raffle, err := s.repo.GetByID(s.ctx, raffleID)
	if err != nil {
		if errors.Is(err, repository.ErrRaffleNotFound) {
			return nil
		}
		return err
	}

	if !raffle.Expired(time.Now()) {
		return nil
	}

	err = s.raffles.Close(s.ctx, raffleID)
	if err != nil && !errors.Is(err, models.ErrRaffleDrawn) {
		return err
	}

	s.log.Info().Str("raffle_id", raffleID).Msg("expired raffle closed")
	return nil
}
