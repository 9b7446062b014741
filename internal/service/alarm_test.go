package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/fieldmon/internal/config"
)

func TestAlarmService(t *testing.T) {
	s := NewAlarmService(config.DefaultConfig().AlarmRules, fixedNow)

	list := s.List().Data
	require.Len(t, list, 3)
	assert.Equal(t, "Active", list[0].Status())
	assert.Equal(t, "Acknowledged", list[2].Status())
	assert.Equal(t, 2, s.ActiveCount())

	require.True(t, s.Ack(1).IsSuccess())
	assert.Equal(t, "2026-03-01 10:00:05", s.List().Data[0].AckTime)
	assert.Equal(t, 1, s.ActiveCount())

	require.True(t, s.Clear(2).IsSuccess())
	assert.Len(t, s.List().Data, 2)
	assert.Zero(t, s.ActiveCount())

	assert.Equal(t, CodeNotFound, s.Ack(2).Code)
	assert.Equal(t, CodeNotFound, s.Clear(2).Code)
}

func TestAlarmService_Rules(t *testing.T) {
	s := NewAlarmService(config.DefaultConfig().AlarmRules, nil)

	rules := s.LoadRules().Data
	assert.Equal(t, 3000, rules.CommTimeoutMs)
	assert.Equal(t, 5, rules.DurationSec)

	rules.HighLimit = 80
	rules.LowLimit = 10
	require.True(t, s.SaveRules(rules).IsSuccess())
	assert.Equal(t, 80.0, s.LoadRules().Data.HighLimit)

	rules.LowLimit = 90
	assert.Equal(t, CodeInvalid, s.SaveRules(rules).Code)
	assert.Equal(t, 10.0, s.LoadRules().Data.LowLimit)
}
