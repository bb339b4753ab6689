package models

import (
	"errors"
	"time"
)

var ErrAlreadyCompleted = errors.New("task already completed by user")

// Task — разовое задание с фиксированной наградой.
// Список выполнивших хранится в самом документе: повторное выполнение
// отклоняется по членству в Participants.
type Task struct {
	ID           string    `json:"id"`
	CreatorID    int64     `json:"creator_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Reward       int64     `json:"reward"`
	Link         string    `json:"link,omitempty"`
	Participants []int64   `json:"participants"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewTask(id string, creatorID int64, title, description, link string, reward int64, now time.Time) *Task {
	return &Task{
		ID:           id,
		CreatorID:    creatorID,
		Title:        title,
		Description:  description,
		Reward:       reward,
		Link:         link,
		Participants: make([]int64, 0),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (t *Task) CompletedBy(userID int64) bool {
	for _, id := range t.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

// Complete отмечает выполнение, строго один раз на пользователя.
// Начисление награды выполняет вызывающая сторона в той же транзакции.
func (t *Task) Complete(userID int64, now time.Time) error {
	if t.CompletedBy(userID) {
		return ErrAlreadyCompleted
	}
	t.Participants = append(t.Participants, userID)
	t.UpdatedAt = now
	return nil
}

// CreateTaskRequest — входные данные админского создания задания
type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Link        string `json:"link"`
	Reward      int64  `json:"reward"`
}

// TaskResponse — задание с флагом выполнения для текущего пользователя
type TaskResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Reward      int64     `json:"reward"`
	Link        string    `json:"link,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
}

func (t *Task) ToResponse(userID int64) *TaskResponse {
	return &TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Reward:      t.Reward,
		Link:        t.Link,
		Completed:   t.CompletedBy(userID),
		CreatedAt:   t.CreatedAt,
	}
}

// CompleteResponse — результат выполнения задания
type CompleteResponse struct {
	TaskID  string `json:"task_id"`
	Reward  int64  `json:"reward"`
	Balance int64  `json:"balance"`
}
