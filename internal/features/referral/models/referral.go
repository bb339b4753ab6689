package models

import "errors"

var (
	ErrInvalidCode     = errors.New("invalid invite code")
	ErrSelfReferral    = errors.New("cannot redeem own invite code")
	ErrAlreadyReferred = errors.New("user is already referred")
)

// ReferralResult — итог успешного погашения инвайт-кода
type ReferralResult struct {
	InviterID     int64 `json:"inviter_id"`
	InviteeID     int64 `json:"invitee_id"`
	InviterReward int64 `json:"inviter_reward"`
	InviteeReward int64 `json:"invitee_reward"`
}

// CodeResponse — инвайт-код пользователя
type CodeResponse struct {
	Code string `json:"code" example:"3q2xYz_Ab1c-2idkr"`
}

// RedeemRequest — тело запроса на погашение кода
type RedeemRequest struct {
	Code string `json:"code" binding:"required" example:"3q2xYz_Ab1c-2idkr"`
}
