package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodesUnique(t *testing.T) {
	codes := []string{ErrConfig, ErrNav, ErrSession, ErrDevice, ErrAlarm, ErrMqtt, ErrExec}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.NotEmpty(t, code)
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestError_Format(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
		absent   []string
	}{
		{
			name:     "message only",
			err:      New(ErrDevice, "Device 9 not found", ""),
			contains: []string{"✗ Device 9 not found\n"},
		},
		{
			name:     "with suggestion",
			err:      New(ErrSession, "Invalid device id -1", "Pick a device from the list"),
			contains: []string{"✗ Invalid device id -1", "\n  Pick a device from the list\n"},
		},
		{
			name:     "with cause",
			err:      WrapWithCode(fmt.Errorf("connection refused"), ErrMqtt, "Broker unreachable", "Check mqtt.broker"),
			contains: []string{"✗ Broker unreachable", "\n  connection refused\n", "\n  Check mqtt.broker\n"},
		},
		{
			name:   "no empty sections",
			err:    Newf(ErrNav, "page %d", 42),
			absent: []string{"\n\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.err.Error()
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, out, s)
			}
			assert.True(t, strings.HasPrefix(out, "✗ "))
		})
	}
}

func TestWrap_DefaultsToExec(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(cause, "export failed")

	assert.Equal(t, ErrExec, err.Code)
	assert.ErrorIs(t, err, cause)
}

func TestIsCode(t *testing.T) {
	base := New(ErrConfig, "bad config", "")
	wrapped := fmt.Errorf("loading: %w", base)

	assert.True(t, IsCode(base, ErrConfig))
	assert.True(t, IsCode(wrapped, ErrConfig))
	assert.False(t, IsCode(wrapped, ErrDevice))
	assert.False(t, IsCode(nil, ErrConfig))
	assert.False(t, IsCode(errors.New("plain"), ErrConfig))
}

func TestCodeOf(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(ErrAlarm, "alarm 3 not found", ""))

	require.Error(t, err)
	assert.Equal(t, ErrAlarm, CodeOf(err))
	assert.Empty(t, CodeOf(errors.New("plain")))
}
