package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000

	MinTitleLength = 1

	// Минимальная длина инвайт-кода: 8 байт энтропии в base64url плюс суффикс
	MinInviteCodeLength = 11

	MaxWinnerCount = 1000
)

// Инвайт-код: URL-safe base64 алфавит с разделителем "-"
var inviteCodeRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateTitle проверяет заголовок
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)
	if len(title) < MinTitleLength {
		return fmt.Errorf("title cannot be empty")
	}

	if len(title) > MaxTitleLength {
		return fmt.Errorf("title cannot exceed %d characters", MaxTitleLength)
	}

	return nil
}

// ValidateAmount проверяет сумму начисления или списания
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be a positive integer")
	}
	return nil
}

// ValidateReward проверяет награду за задание
func ValidateReward(reward int64) error {
	if reward < 0 {
		return fmt.Errorf("reward cannot be negative")
	}
	return nil
}

// ValidateEntryFee проверяет входной взнос розыгрыша
func ValidateEntryFee(fee int64) error {
	if fee < 0 {
		return fmt.Errorf("entry fee cannot be negative")
	}
	return nil
}

// ValidateWinnerCount проверяет количество победителей
func ValidateWinnerCount(count int) error {
	if count < 1 {
		return fmt.Errorf("winner count must be at least 1")
	}
	if count > MaxWinnerCount {
		return fmt.Errorf("winner count cannot exceed %d", MaxWinnerCount)
	}
	return nil
}

// ValidateEndDate проверяет дату завершения розыгрыша
func ValidateEndDate(endDate, now time.Time) error {
	if endDate.IsZero() {
		return fmt.Errorf("end date is required")
	}
	if !endDate.After(now) {
		return fmt.Errorf("end date must be in the future")
	}
	return nil
}

// ValidateInviteCode проверяет форму инвайт-кода до обращения к хранилищу
func ValidateInviteCode(code string) error {
	if len(code) < MinInviteCodeLength {
		return fmt.Errorf("invite code is too short")
	}
	if !inviteCodeRegex.MatchString(code) {
		return fmt.Errorf("invite code contains invalid characters")
	}
	return nil
}
