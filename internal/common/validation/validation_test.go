package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateTitle(t *testing.T) {
	assert.NoError(t, ValidateTitle("weekly raffle"))
	assert.Error(t, ValidateTitle(""))
	assert.Error(t, ValidateTitle("   "))
	assert.Error(t, ValidateTitle(strings.Repeat("a", MaxTitleLength+1)))
}

func TestValidateAmount(t *testing.T) {
	assert.NoError(t, ValidateAmount(1))
	assert.Error(t, ValidateAmount(0))
	assert.Error(t, ValidateAmount(-5))
}

func TestValidateReward(t *testing.T) {
	assert.NoError(t, ValidateReward(0))
	assert.NoError(t, ValidateReward(100))
	assert.Error(t, ValidateReward(-1))
}

func TestValidateEntryFee(t *testing.T) {
	assert.NoError(t, ValidateEntryFee(0))
	assert.NoError(t, ValidateEntryFee(10))
	assert.Error(t, ValidateEntryFee(-1))
}

func TestValidateWinnerCount(t *testing.T) {
	assert.NoError(t, ValidateWinnerCount(1))
	assert.NoError(t, ValidateWinnerCount(MaxWinnerCount))
	assert.Error(t, ValidateWinnerCount(0))
	assert.Error(t, ValidateWinnerCount(MaxWinnerCount+1))
}

func TestValidateEndDate(t *testing.T) {
	now := time.Now()
	assert.NoError(t, ValidateEndDate(now.Add(time.Hour), now))
	assert.Error(t, ValidateEndDate(now.Add(-time.Hour), now))
	assert.Error(t, ValidateEndDate(time.Time{}, now))
}

func TestValidateInviteCode(t *testing.T) {
	assert.NoError(t, ValidateInviteCode("AbC123xyz_0-1"))
	assert.Error(t, ValidateInviteCode("short"))
	assert.Error(t, ValidateInviteCode("has spaces not allowed"))
	assert.Error(t, ValidateInviteCode("причем+тут/юникод"))
}
