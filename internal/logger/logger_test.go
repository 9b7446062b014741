package logger

import (
	"bytes"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	flags := log.Flags()
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
	})
	return &buf
}

func TestEnvLogger_Debug(t *testing.T) {
	tests := []struct {
		name      string
		envValue  string
		expectLog bool
	}{
		{name: "logs when FIELDMON_DEBUG is set", envValue: "1", expectLog: true},
		{name: "logs for any value", envValue: "yes", expectLog: true},
		{name: "silent when empty", envValue: "", expectLog: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLog(t)
			t.Setenv(DebugEnv, tt.envValue)

			NewEnvLogger("[nav]").Debug("goto %s", "Monitor")

			if tt.expectLog {
				assert.Equal(t, "[nav] DEBUG: goto Monitor\n", buf.String())
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestEnvLogger_Levels(t *testing.T) {
	buf := captureLog(t)
	l := NewEnvLogger("[session]")

	l.Info("started %d", 2)
	l.Warn("read failed")
	l.Error("panic")

	assert.Equal(t, "[session] started 2\n[session] WARN: read failed\n[session] ERROR: panic\n", buf.String())
}

func TestNoop(t *testing.T) {
	buf := captureLog(t)
	l := Noop()
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x")
	assert.Empty(t, buf.String())
}

func TestBufferLogger(t *testing.T) {
	l := NewBufferLogger()
	l.Info("session %s started", "abc")
	l.Warn("device %d offline", 3)

	assert.Len(t, l.Messages, 2)
	assert.True(t, l.HasLevel("info"))
	assert.False(t, l.HasLevel("error"))
	assert.True(t, l.Contains("warn", "device 3"))
	assert.False(t, l.Contains("info", "device 3"))

	l.Clear()
	assert.Empty(t, l.Messages)
}

func TestDefault(t *testing.T) {
	orig := Default()
	t.Cleanup(func() { SetDefault(orig) })

	buf := NewBufferLogger()
	SetDefault(buf)
	Default().Info("hello")

	assert.True(t, buf.Contains("info", "hello"))
}
