package models

import (
	"errors"
	"time"
)

var (
	ErrRaffleClosed      = errors.New("raffle is no longer open")
	ErrRaffleStillOpen   = errors.New("raffle is still open")
	ErrRaffleDrawn       = errors.New("raffle has already been drawn")
	ErrRaffleNotDrawn    = errors.New("raffle has not been drawn yet")
	ErrAlreadyJoined     = errors.New("user has already joined the raffle")
	ErrNoEntrants        = errors.New("raffle has no entrants")
	ErrInvalidTransition = errors.New("invalid raffle status transition")
)

// RaffleStatus — этап жизненного цикла розыгрыша
type RaffleStatus string

const (
	RaffleStatusOpen   RaffleStatus = "open"   // Идет прием участников
	RaffleStatusClosed RaffleStatus = "closed" // Прием закрыт, победители еще не выбраны
	RaffleStatusDrawn  RaffleStatus = "drawn"  // Победители выбраны, призы начислены
)

// Participant — запись об участии, фиксирует фактически списанный взнос
type Participant struct {
	UserID   int64     `json:"user_id"`
	PaidFee  int64     `json:"paid_fee"`
	JoinedAt time.Time `json:"joined_at"`
}

// Winner — победитель с начисленным призом
type Winner struct {
	UserID int64 `json:"user_id"`
	Prize  int64 `json:"prize"`
}

// Raffle — розыгрыш с фондом из взносов участников
type Raffle struct {
	ID           string        `json:"id"`
	CreatorID    int64         `json:"creator_id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	EntryFee     int64         `json:"entry_fee"`
	WinnerCount  int           `json:"winner_count"`
	Status       RaffleStatus  `json:"status"`
	EndsAt       *time.Time    `json:"ends_at,omitempty"` // nil = закрывается только вручную
	TotalPool    int64         `json:"total_pool"`
	Participants []Participant `json:"participants"`
	Winners      []Winner      `json:"winners,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func NewRaffle(id string, creatorID int64, title, description string, entryFee int64, winnerCount int, endsAt *time.Time, now time.Time) *Raffle {
	return &Raffle{
		ID:           id,
		CreatorID:    creatorID,
		Title:        title,
		Description:  description,
		EntryFee:     entryFee,
		WinnerCount:  winnerCount,
		Status:       RaffleStatusOpen,
		EndsAt:       endsAt,
		Participants: make([]Participant, 0),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Expired сообщает, истек ли дедлайн приема участников
func (r *Raffle) Expired(now time.Time) bool {
	return r.EndsAt != nil && now.After(*r.EndsAt)
}

func (r *Raffle) HasParticipant(userID int64) bool {
	for _, p := range r.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// Join добавляет участника и увеличивает фонд на его взнос.
// Списание взноса с баланса выполняет вызывающая сторона в той же транзакции.
func (r *Raffle) Join(userID int64, now time.Time) (*Participant, error) {
	if r.Status != RaffleStatusOpen || r.Expired(now) {
		return nil, ErrRaffleClosed
	}
	if r.HasParticipant(userID) {
		return nil, ErrAlreadyJoined
	}

	p := Participant{UserID: userID, PaidFee: r.EntryFee, JoinedAt: now}
	r.Participants = append(r.Participants, p)
	r.TotalPool += r.EntryFee
	r.UpdatedAt = now

	return &p, nil
}

// Close фиксирует состав участников. Повторное закрытие — no-op.
func (r *Raffle) Close(now time.Time) error {
	switch r.Status {
	case RaffleStatusOpen:
		r.Status = RaffleStatusClosed
		r.UpdatedAt = now
		return nil
	case RaffleStatusClosed:
		return nil
	default:
		return ErrRaffleDrawn
	}
}

// PrizePerWinner — приз на победителя: фонд делится нацело на настроенное
// число призовых мест. Делитель не уменьшается, когда участников меньше, чем
// мест, — незанятые доли фонда не распределяются.
func (r *Raffle) PrizePerWinner() int64 {
	if r.WinnerCount == 0 {
		return 0
	}
	return r.TotalPool / int64(r.WinnerCount)
}

// Draw выбирает победителей по готовой выборке индексов участников.
// Выборку отдает вызывающая сторона, чтобы модель оставалась детерминированной.
func (r *Raffle) Draw(sample []int, now time.Time) ([]Winner, error) {
	if r.Status == RaffleStatusOpen {
		return nil, ErrRaffleStillOpen
	}
	if r.Status == RaffleStatusDrawn {
		return nil, ErrRaffleDrawn
	}
	if len(r.Participants) == 0 {
		return nil, ErrNoEntrants
	}

	prize := r.PrizePerWinner()
	winners := make([]Winner, 0, len(sample))
	for _, idx := range sample {
		winners = append(winners, Winner{
			UserID: r.Participants[idx].UserID,
			Prize:  prize,
		})
	}

	r.Winners = winners
	r.Status = RaffleStatusDrawn
	r.UpdatedAt = now

	return winners, nil
}

// ResetDraw возвращает розыгрыш из drawn в closed для подтвержденного
// повторного розыгрыша. Уже начисленные призы не отзываются.
func (r *Raffle) ResetDraw(now time.Time) error {
	if r.Status != RaffleStatusDrawn {
		return ErrInvalidTransition
	}
	r.Status = RaffleStatusClosed
	r.Winners = nil
	r.UpdatedAt = now
	return nil
}

// EffectiveWinnerCount — сколько победителей реально будет выбрано
func (r *Raffle) EffectiveWinnerCount() int {
	if len(r.Participants) < r.WinnerCount {
		return len(r.Participants)
	}
	return r.WinnerCount
}
