package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"rewards-mini-app-backend/internal/common/logger"
	"rewards-mini-app-backend/internal/common/metrics"
	"rewards-mini-app-backend/internal/common/validation"
	"rewards-mini-app-backend/internal/features/referral/models"
	"rewards-mini-app-backend/internal/features/referral/repository"
	usermodels "rewards-mini-app-backend/internal/features/user/models"
	userrepo "rewards-mini-app-backend/internal/features/user/repository"
	"rewards-mini-app-backend/internal/utils/random"
)

// Размер случайной части кода: 8 байт = 64 бита энтропии
const codeTokenBytes = 8

var ErrUserNotFound = errors.New("user not found")

type ReferralService interface {
	GenerateCode(ctx context.Context, inviterID int64) (string, error)
	Redeem(ctx context.Context, code string, inviteeID int64) (*models.ReferralResult, error)
	Friends(ctx context.Context, inviterID int64) ([]usermodels.FriendRef, error)
}

// Rewards — фиксированные награды реферальной программы
type Rewards struct {
	InviterBonus int64
	InviteeBonus int64
}

type referralService struct {
	codes   repository.CodeRepository
	users   userrepo.UserRepository
	rewards Rewards
	log     zerolog.Logger
}

func NewReferralService(codes repository.CodeRepository, users userrepo.UserRepository, rewards Rewards) ReferralService {
	return &referralService{
		codes:   codes,
		users:   users,
		rewards: rewards,
		log:     logger.With("referral"),
	}
}

func (s *referralService) GenerateCode(ctx context.Context, inviterID int64) (string, error) {
	if existing, err := s.codes.CodeForInviter(ctx, inviterID); err == nil {
		return existing, nil
	} else if !errors.Is(err, repository.ErrCodeNotFound) {
		return "", err
	}

	token, err := random.Token(codeTokenBytes)
	if err != nil {
		return "", err
	}

	// Случайная часть + суффикс из ID пригласившего, URL-safe
	code := fmt.Sprintf("%s-%s",
		base64.RawURLEncoding.EncodeToString(token),
		strconv.FormatInt(inviterID, 36),
	)

	return s.codes.SaveCode(ctx, inviterID, code)
}

func (s *referralService) Redeem(ctx context.Context, code string, inviteeID int64) (*models.ReferralResult, error) {
	if err := validation.ValidateInviteCode(code); err != nil {
		return nil, models.ErrInvalidCode
	}

	inviterID, err := s.codes.ResolveCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			return nil, models.ErrInvalidCode
		}
		return nil, err
	}

	if inviterID == inviteeID {
		return nil, models.ErrSelfReferral
	}

	// Выставление invitedBy и оба начисления фиксируются одной транзакцией:
	// повтор после частичного сбоя не может удвоить награды.
	err = s.users.MutatePair(ctx, inviterID, inviteeID, func(inviter, invitee *usermodels.User) ([]*usermodels.LedgerEntry, error) {
		if invitee.InvitedBy != nil {
			return nil, models.ErrAlreadyReferred
		}

		now := time.Now()

		inviteeEntry, err := invitee.Credit(s.rewards.InviteeBonus, usermodels.EntryTypeReferralReward,
			fmt.Sprintf("invited by %d", inviterID), now)
		if err != nil {
			return nil, err
		}

		inviterEntry, err := inviter.Credit(s.rewards.InviterBonus, usermodels.EntryTypeReferralBonus,
			fmt.Sprintf("invited %d", inviteeID), now)
		if err != nil {
			return nil, err
		}

		invitee.InvitedBy = &inviter.ID
		inviter.AddFriend(invitee.ID, invitee.Username, s.rewards.InviterBonus, now)

		return []*usermodels.LedgerEntry{inviteeEntry, inviterEntry}, nil
	})
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	metrics.RecordReferralRedeem()
	metrics.RecordMutation(string(usermodels.EntryTypeReferralReward), s.rewards.InviteeBonus)
	metrics.RecordMutation(string(usermodels.EntryTypeReferralBonus), s.rewards.InviterBonus)

	s.log.Info().
		Int64("inviter_id", inviterID).
		Int64("invitee_id", inviteeID).
		Msg("invite code redeemed")

	return &models.ReferralResult{
		InviterID:     inviterID,
		InviteeID:     inviteeID,
		InviterReward: s.rewards.InviterBonus,
		InviteeReward: s.rewards.InviteeBonus,
	}, nil
}

func (s *referralService) Friends(ctx context.Context, inviterID int64) ([]usermodels.FriendRef, error) {
	user, err := s.users.GetByID(ctx, inviterID)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user.Friends, nil
}
