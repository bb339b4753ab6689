package models

import (
	"time"

	"github.com/google/uuid"
)

// EntryType — тип события, изменившего баланс
type EntryType string

const (
	EntryTypeTaskReward     EntryType = "task_reward"
	EntryTypeReferralBonus  EntryType = "referral_bonus"  // начисление пригласившему
	EntryTypeReferralReward EntryType = "referral_reward" // начисление приглашенному
	EntryTypeRaffleWin      EntryType = "raffle_win"
	EntryTypeRaffleEntry    EntryType = "raffle_entry" // списание входного взноса
	EntryTypeManual         EntryType = "manual"
)

// LedgerEntry — неизменяемая запись журнала баланса.
// Журнал только пополняется; сумма Amount подписанная.
type LedgerEntry struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"user_id"`
	Type        EntryType `json:"type"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"date"`
}

func NewLedgerEntry(userID int64, entryType EntryType, amount int64, description string, now time.Time) *LedgerEntry {
	return &LedgerEntry{
		ID:          uuid.New().String(),
		UserID:      userID,
		Type:        entryType,
		Amount:      amount,
		Description: description,
		CreatedAt:   now,
	}
}
