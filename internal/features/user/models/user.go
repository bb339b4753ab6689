package models

import (
	"errors"
	"time"
)

var (
	ErrNonPositiveAmount   = errors.New("amount must be a positive integer")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// FriendRef — запись о приглашенном пользователе, только добавляется
type FriendRef struct {
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	InvitedAt time.Time `json:"invited_at"`
}

// User представляет учетную запись с балансом баллов.
// ID — числовой Telegram ID, выдается извне и неизменен.
type User struct {
	ID        int64  `json:"id" example:"123456789"`
	Username  string `json:"username" example:"johndoe"`
	FirstName string `json:"first_name" example:"John"`
	LastName  string `json:"last_name" example:"Doe"`
	Role      string `json:"role" example:"user" enums:"user,admin"`
	Status    string `json:"status" example:"active" enums:"active,banned"`

	// Points — кэшированная сумма записей журнала, инвариант: >= 0.
	// Меняется только через Credit/Debit вместе с записью в журнал.
	Points int64 `json:"points" example:"150"`

	// InvitedBy выставляется не более одного раза, first-write-wins
	InvitedBy       *int64      `json:"invited_by,omitempty"`
	InvitationCount int64       `json:"invitation_count"`
	InvitationBonus int64       `json:"invitation_bonus"`
	Friends         []FriendRef `json:"friends,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser создает учетную запись с нулевым балансом
func NewUser(id int64, username, firstName, lastName string, now time.Time) *User {
	return &User{
		ID:        id,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
		Role:      "user",
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Credit увеличивает баланс и возвращает соответствующую запись журнала.
// Сумма обязана быть положительной.
func (u *User) Credit(amount int64, entryType EntryType, description string, now time.Time) (*LedgerEntry, error) {
	if amount <= 0 {
		return nil, ErrNonPositiveAmount
	}

	u.Points += amount
	u.UpdatedAt = now

	return NewLedgerEntry(u.ID, entryType, amount, description, now), nil
}

// Debit уменьшает баланс и возвращает запись журнала с отрицательной суммой.
// При нехватке баллов баланс не меняется.
func (u *User) Debit(amount int64, entryType EntryType, description string, now time.Time) (*LedgerEntry, error) {
	if amount <= 0 {
		return nil, ErrNonPositiveAmount
	}
	if u.Points < amount {
		return nil, ErrInsufficientBalance
	}

	u.Points -= amount
	u.UpdatedAt = now

	return NewLedgerEntry(u.ID, entryType, -amount, description, now), nil
}

// AddFriend фиксирует успешный реферал на стороне пригласившего
func (u *User) AddFriend(inviteeID int64, username string, bonus int64, now time.Time) {
	u.Friends = append(u.Friends, FriendRef{
		UserID:    inviteeID,
		Username:  username,
		InvitedAt: now,
	})
	u.InvitationCount++
	u.InvitationBonus += bonus
	u.UpdatedAt = now
}

// UserResponse представляет публичную информацию о пользователе
type UserResponse struct {
	ID              int64     `json:"id" example:"123456789"`
	Username        string    `json:"username" example:"johndoe"`
	FirstName       string    `json:"first_name" example:"John"`
	LastName        string    `json:"last_name" example:"Doe"`
	Role            string    `json:"role" example:"user" enums:"user,admin"`
	Status          string    `json:"status" example:"active" enums:"active,banned"`
	Points          int64     `json:"points" example:"150"`
	InvitationCount int64     `json:"invitation_count"`
	InvitationBonus int64     `json:"invitation_bonus"`
	CreatedAt       time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:              u.ID,
		Username:        u.Username,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Role:            u.Role,
		Status:          u.Status,
		Points:          u.Points,
		InvitationCount: u.InvitationCount,
		InvitationBonus: u.InvitationBonus,
		CreatedAt:       u.CreatedAt,
	}
}
