package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSyncConfig_Durations(t *testing.T) {
	assert.Equal(t, time.Hour, SyncConfig{Interval: 3600}.IntervalDuration())
	assert.Equal(t, time.Duration(0), SyncConfig{Interval: 0}.IntervalDuration())
	assert.Equal(t, time.Duration(0), SyncConfig{Interval: -5}.IntervalDuration())

	assert.Equal(t, 2*time.Minute, SyncConfig{CommandTimeout: "2m"}.CommandTimeoutDuration())
	assert.Equal(t, 30*time.Second, SyncConfig{CommandTimeout: "30"}.CommandTimeoutDuration())
	assert.Equal(t, time.Duration(0), SyncConfig{}.CommandTimeoutDuration())
	assert.Equal(t, time.Duration(0), SyncConfig{CommandTimeout: "bogus"}.CommandTimeoutDuration())
}

func TestNotifyConfig_Durations(t *testing.T) {
	s, f := NotifyConfig{}.Durations()
	assert.Equal(t, 5*time.Second, s)
	assert.Equal(t, 24*time.Hour, f)

	s, f = NotifyConfig{SuccessDuration: "10s", FailureDuration: "2d"}.Durations()
	assert.Equal(t, 10*time.Second, s)
	assert.Equal(t, 48*time.Hour, f)
}
