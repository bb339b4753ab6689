package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"rewards-mini-app-backend/internal/common/cache"
	apperrors "rewards-mini-app-backend/internal/common/errors"
	"rewards-mini-app-backend/internal/common/logger"
	"rewards-mini-app-backend/internal/common/metrics"
	"rewards-mini-app-backend/internal/common/validation"
	"rewards-mini-app-backend/internal/features/raffle/models"
	"rewards-mini-app-backend/internal/features/raffle/repository"
	usermodels "rewards-mini-app-backend/internal/features/user/models"
	userrepo "rewards-mini-app-backend/internal/features/user/repository"
	"rewards-mini-app-backend/internal/utils/random"
)

var (
	ErrRaffleNotFound      = repository.ErrRaffleNotFound
	ErrUserNotFound        = userrepo.ErrUserNotFound
	ErrInsufficientBalance = usermodels.ErrInsufficientBalance
)

type RaffleService interface {
	Create(ctx context.Context, creatorID int64, input *models.CreateRaffleRequest) (*models.Raffle, error)
	Get(ctx context.Context, id string) (*models.Raffle, error)
	List(ctx context.Context, status models.RaffleStatus) ([]*models.Raffle, error)
	Join(ctx context.Context, raffleID string, userID int64) (*models.JoinResponse, error)
	Close(ctx context.Context, raffleID string) error
	Draw(ctx context.Context, raffleID string, confirm bool) (*models.DrawResponse, error)
	Winners(ctx context.Context, raffleID string) ([]models.Winner, error)
}

type raffleService struct {
	repo     repository.RaffleRepository
	cache    *cache.CacheService
	cacheTTL time.Duration
	log      zerolog.Logger
}

func NewRaffleService(repo repository.RaffleRepository, cacheService *cache.CacheService, cacheTTL time.Duration) RaffleService {
	return &raffleService{
		repo:     repo,
		cache:    cacheService,
		cacheTTL: cacheTTL,
		log:      logger.With("raffle"),
	}
}

func (s *raffleService) Create(ctx context.Context, creatorID int64, input *models.CreateRaffleRequest) (*models.Raffle, error) {
	if err := validation.ValidateTitle(input.Title); err != nil {
		return nil, apperrors.NewValidationError("title", err.Error())
	}
	if err := validation.ValidateEntryFee(input.EntryFee); err != nil {
		return nil, apperrors.NewValidationError("entry_fee", err.Error())
	}
	if err := validation.ValidateWinnerCount(input.WinnerCount); err != nil {
		return nil, apperrors.NewValidationError("winner_count", err.Error())
	}
	if input.EndsAt != nil {
		if err := validation.ValidateEndDate(*input.EndsAt, time.Now()); err != nil {
			return nil, apperrors.NewValidationError("ends_at", err.Error())
		}
	}

	raffle := models.NewRaffle(uuid.New().String(), creatorID,
		input.Title, input.Description, input.EntryFee, input.WinnerCount, input.EndsAt, time.Now())

	if err := s.repo.Create(ctx, raffle); err != nil {
		return nil, err
	}
	s.invalidate(ctx, raffle.ID)

	s.log.Info().
		Str("raffle_id", raffle.ID).
		Int64("creator_id", creatorID).
		Int64("entry_fee", raffle.EntryFee).
		Int("winner_count", raffle.WinnerCount).
		Msg("raffle created")

	return raffle, nil
}

func (s *raffleService) Get(ctx context.Context, id string) (*models.Raffle, error) {
	var raffle models.Raffle
	err := s.cache.GetOrSet(ctx, cacheRaffleKeyPrefix+id, &raffle, s.cacheTTL, func() (interface{}, error) {
		return s.repo.GetByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return &raffle, nil
}

func (s *raffleService) List(ctx context.Context, status models.RaffleStatus) ([]*models.Raffle, error) {
	var raffles []*models.Raffle
	err := s.cache.GetOrSet(ctx, cacheListKeyPrefix+string(status), &raffles, s.cacheTTL, func() (interface{}, error) {
		return s.repo.ListByStatus(ctx, status)
	})
	if err != nil {
		return nil, err
	}
	return raffles, nil
}

func (s *raffleService) Join(ctx context.Context, raffleID string, userID int64) (*models.JoinResponse, error) {
	var paidFee, balance int64

	err := s.repo.Join(ctx, raffleID, userID, func(raffle *models.Raffle, user *usermodels.User) (*usermodels.LedgerEntry, error) {
		now := time.Now()

		// Ленивое закрытие: истекший розыгрыш не принимает участников,
		// даже если фоновая проверка его еще не обработала
		participant, err := raffle.Join(userID, now)
		if err != nil {
			return nil, err
		}

		var entry *usermodels.LedgerEntry
		if participant.PaidFee > 0 {
			entry, err = user.Debit(participant.PaidFee, usermodels.EntryTypeRaffleEntry,
				fmt.Sprintf("entry fee for raffle %s", raffle.ID), now)
			if err != nil {
				return nil, err
			}
		}

		paidFee = participant.PaidFee
		balance = user.Points
		return entry, nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, raffleID)
	metrics.RecordRaffleJoin()
	if paidFee > 0 {
		metrics.RecordMutation(string(usermodels.EntryTypeRaffleEntry), -paidFee)
	}

	s.log.Info().
		Str("raffle_id", raffleID).
		Int64("user_id", userID).
		Int64("paid_fee", paidFee).
		Msg("user joined raffle")

	return &models.JoinResponse{RaffleID: raffleID, PaidFee: paidFee, Balance: balance}, nil
}

func (s *raffleService) Close(ctx context.Context, raffleID string) error {
	err := s.repo.Mutate(ctx, raffleID, func(raffle *models.Raffle) error {
		return raffle.Close(time.Now())
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, raffleID)
	s.log.Info().Str("raffle_id", raffleID).Msg("raffle closed")
	return nil
}

func (s *raffleService) Draw(ctx context.Context, raffleID string, confirm bool) (*models.DrawResponse, error) {
	var result *models.DrawResponse

	err := s.repo.Draw(ctx, raffleID, func(raffle *models.Raffle, participants map[int64]*usermodels.User) ([]*usermodels.LedgerEntry, error) {
		now := time.Now()

		if raffle.Status == models.RaffleStatusDrawn {
			if !confirm {
				return nil, models.ErrRaffleDrawn
			}
			// Подтвержденный повторный розыгрыш: прежние начисления не отзываются
			if err := raffle.ResetDraw(now); err != nil {
				return nil, err
			}
		}

		sample, err := random.Sample(len(raffle.Participants), raffle.WinnerCount)
		if err != nil {
			return nil, err
		}

		winners, err := raffle.Draw(sample, now)
		if err != nil {
			return nil, err
		}

		entries := make([]*usermodels.LedgerEntry, 0, len(winners))
		var distributed int64
		for _, w := range winners {
			if w.Prize == 0 {
				continue
			}
			user, ok := participants[w.UserID]
			if !ok {
				return nil, userrepo.ErrUserNotFound
			}
			entry, err := user.Credit(w.Prize, usermodels.EntryTypeRaffleWin,
				fmt.Sprintf("prize for raffle %s", raffle.ID), now)
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry)
			distributed += w.Prize
		}

		result = &models.DrawResponse{
			RaffleID:      raffle.ID,
			Winners:       winners,
			PrizePerWin:   raffle.PrizePerWinner(),
			TotalPool:     raffle.TotalPool,
			Distributed:   distributed,
			Undistributed: raffle.TotalPool - distributed,
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, raffleID)
	metrics.RecordRaffleDraw()
	for _, w := range result.Winners {
		if w.Prize > 0 {
			metrics.RecordMutation(string(usermodels.EntryTypeRaffleWin), w.Prize)
		}
	}

	s.log.Info().
		Str("raffle_id", raffleID).
		Int("winners", len(result.Winners)).
		Int64("distributed", result.Distributed).
		Int64("undistributed", result.Undistributed).
		Msg("raffle drawn")

	return result, nil
}

func (s *raffleService) Winners(ctx context.Context, raffleID string) ([]models.Winner, error) {
	raffle, err := s.Get(ctx, raffleID)
	if err != nil {
		return nil, err
	}
	switch raffle.Status {
	case models.RaffleStatusDrawn:
		return raffle.Winners, nil
	case models.RaffleStatusClosed:
		return nil, models.ErrRaffleNotDrawn
	default:
		return nil, models.ErrRaffleStillOpen
	}
}

func (s *raffleService) invalidate(ctx context.Context, raffleID string) {
	if err := s.cache.InvalidateRaffle(ctx, raffleID); err != nil {
		s.log.Warn().Err(err).Str("raffle_id", raffleID).Msg("failed to invalidate raffle cache")
	}
}
