package models

import "time"

// CreateRaffleRequest — входные данные админского создания розыгрыша
type CreateRaffleRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	EntryFee    int64      `json:"entry_fee"`
	WinnerCount int        `json:"winner_count" binding:"required"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
}

// DrawRequest — параметры розыгрыша победителей
type DrawRequest struct {
	// Повторный розыгрыш уже разыгранного события требует явного подтверждения
	Confirm bool `json:"confirm"`
}

// JoinResponse — результат вступления в розыгрыш
type JoinResponse struct {
	RaffleID string `json:"raffle_id"`
	PaidFee  int64  `json:"paid_fee"`
	Balance  int64  `json:"balance"`
}

// DrawResponse — итог выбора победителей
type DrawResponse struct {
	RaffleID      string   `json:"raffle_id"`
	Winners       []Winner `json:"winners"`
	PrizePerWin   int64    `json:"prize_per_winner"`
	TotalPool     int64    `json:"total_pool"`
	Distributed   int64    `json:"distributed"`
	Undistributed int64    `json:"undistributed"`
}
