package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRaffle(fee int64, winnerCount int) *Raffle {
	return NewRaffle("r1", 1, "test", "", fee, winnerCount, nil, time.Now())
}

func TestJoinAccumulatesPool(t *testing.T) {
	raffle := newTestRaffle(10, 1)
	now := time.Now()

	for id := int64(1); id <= 3; id++ {
		p, err := raffle.Join(id, now)
		require.NoError(t, err)
		assert.Equal(t, int64(10), p.PaidFee)
	}

	assert.Equal(t, int64(30), raffle.TotalPool)
	assert.Len(t, raffle.Participants, 3)
}

func TestJoinTwice(t *testing.T) {
	raffle := newTestRaffle(10, 1)
	now := time.Now()

	_, err := raffle.Join(1, now)
	require.NoError(t, err)

	_, err = raffle.Join(1, now)
	assert.ErrorIs(t, err, ErrAlreadyJoined)
	assert.Equal(t, int64(10), raffle.TotalPool)
}

func TestJoinAfterClose(t *testing.T) {
	raffle := newTestRaffle(10, 1)
	now := time.Now()
	require.NoError(t, raffle.Close(now))

	_, err := raffle.Join(1, now)
	assert.ErrorIs(t, err, ErrRaffleClosed)
}

func TestJoinAfterDeadline(t *testing.T) {
	endsAt := time.Now().Add(-time.Minute)
	raffle := NewRaffle("r1", 1, "test", "", 10, 1, &endsAt, time.Now().Add(-time.Hour))

	// Просроченный розыгрыш отвергает участников еще до фонового закрытия
	_, err := raffle.Join(1, time.Now())
	assert.ErrorIs(t, err, ErrRaffleClosed)
}

func TestCloseIsIdempotent(t *testing.T) {
	raffle := newTestRaffle(0, 1)
	now := time.Now()

	require.NoError(t, raffle.Close(now))
	require.NoError(t, raffle.Close(now))
	assert.Equal(t, RaffleStatusClosed, raffle.Status)
}

func TestDrawBeforeClose(t *testing.T) {
	raffle := newTestRaffle(10, 1)
	_, err := raffle.Join(1, time.Now())
	require.NoError(t, err)

	_, err = raffle.Draw([]int{0}, time.Now())
	assert.ErrorIs(t, err, ErrRaffleStillOpen)
}

func TestDrawWithoutEntrants(t *testing.T) {
	raffle := newTestRaffle(10, 1)
	require.NoError(t, raffle.Close(time.Now()))

	_, err := raffle.Draw(nil, time.Now())
	assert.ErrorIs(t, err, ErrNoEntrants)
}

func TestDrawSplitsPoolEvenly(t *testing.T) {
	raffle := newTestRaffle(10, 3)
	now := time.Now()
	for id := int64(1); id <= 10; id++ {
		_, err := raffle.Join(id, now)
		require.NoError(t, err)
	}
	require.NoError(t, raffle.Close(now))

	winners, err := raffle.Draw([]int{0, 4, 9}, now)
	require.NoError(t, err)
	require.Len(t, winners, 3)

	// 100 / 3 = 33, остаток 1 не распределяется
	var distributed int64
	for _, w := range winners {
		assert.Equal(t, int64(33), w.Prize)
		distributed += w.Prize
	}
	assert.LessOrEqual(t, distributed, raffle.TotalPool)
	assert.Equal(t, RaffleStatusDrawn, raffle.Status)
}

func TestDrawPrizeUsesConfiguredWinnerCount(t *testing.T) {
	raffle := newTestRaffle(10, 5)
	now := time.Now()
	_, err := raffle.Join(1, now)
	require.NoError(t, err)
	_, err = raffle.Join(2, now)
	require.NoError(t, err)
	require.NoError(t, raffle.Close(now))

	winners, err := raffle.Draw([]int{0, 1}, now)
	require.NoError(t, err)
	require.Len(t, winners, 2)

	// Фонд 20 делится на 5 призовых мест, а не на 2 фактических победителей
	var distributed int64
	for _, w := range winners {
		assert.Equal(t, int64(4), w.Prize)
		distributed += w.Prize
	}
	assert.Equal(t, int64(8), distributed)
}

func TestDrawTwice(t *testing.T) {
	raffle := newTestRaffle(10, 1)
	now := time.Now()
	_, err := raffle.Join(1, now)
	require.NoError(t, err)
	require.NoError(t, raffle.Close(now))

	_, err = raffle.Draw([]int{0}, now)
	require.NoError(t, err)

	_, err = raffle.Draw([]int{0}, now)
	assert.ErrorIs(t, err, ErrRaffleDrawn)
}

func TestResetDraw(t *testing.T) {
	raffle := newTestRaffle(10, 1)
	now := time.Now()
	_, err := raffle.Join(1, now)
	require.NoError(t, err)
	require.NoError(t, raffle.Close(now))

	// Сброс до розыгрыша запрещен
	assert.ErrorIs(t, raffle.ResetDraw(now), ErrInvalidTransition)

	_, err = raffle.Draw([]int{0}, now)
	require.NoError(t, err)

	require.NoError(t, raffle.ResetDraw(now))
	assert.Equal(t, RaffleStatusClosed, raffle.Status)
	assert.Nil(t, raffle.Winners)

	_, err = raffle.Draw([]int{0}, now)
	require.NoError(t, err)
}

func TestEffectiveWinnerCount(t *testing.T) {
	raffle := newTestRaffle(10, 5)
	now := time.Now()
	_, err := raffle.Join(1, now)
	require.NoError(t, err)
	_, err = raffle.Join(2, now)
	require.NoError(t, err)

	// Победителей не может быть больше, чем участников
	assert.Equal(t, 2, raffle.EffectiveWinnerCount())
}
