package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDevicesCommand_Table(t *testing.T) {
	withMachineMode(t, false)
	svc := newTestServices(t)

	var buf bytes.Buffer
	require.NoError(t, devicesCommand(&buf, svc, false))

	out := buf.String()
	assert.Contains(t, out, "Temperature Sensor")
	assert.Contains(t, out, "Pressure Gauge")
	assert.Contains(t, out, "Flow Meter")
	assert.Contains(t, out, "Offline")
	assert.NotContains(t, out, "Found")
}

func TestDevicesCommand_Scan(t *testing.T) {
	withMachineMode(t, false)
	svc := newTestServices(t)

	var buf bytes.Buffer
	require.NoError(t, devicesCommand(&buf, svc, true))
	assert.Contains(t, buf.String(), "Found 2 device(s) at 1, 2")
}

func TestDevicesCommand_Empty(t *testing.T) {
	withMachineMode(t, false)
	svc := newTestServices(t)
	for _, id := range []int{1, 2, 3} {
		require.True(t, svc.Devices.Remove(id).IsSuccess())
	}

	var buf bytes.Buffer
	require.NoError(t, devicesCommand(&buf, svc, true))
	assert.Contains(t, buf.String(), "No devices configured")
	assert.Contains(t, buf.String(), "Scan found no devices")
}

func TestDevicesCommand_JSON(t *testing.T) {
	withMachineMode(t, true)
	svc := newTestServices(t)

	var buf bytes.Buffer
	require.NoError(t, devicesCommand(&buf, svc, true))

	var env struct {
		Success bool          `json:"success"`
		Data    DevicesOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.True(t, env.Success)
	require.Len(t, env.Data.Devices, 3)
	assert.Equal(t, "Temperature Sensor", env.Data.Devices[0].Name)
	assert.True(t, env.Data.Devices[0].Online)
	assert.False(t, env.Data.Devices[2].Online)
	assert.Equal(t, []int{1, 2}, env.Data.Scanned)
}

func TestJoinInts(t *testing.T) {
	assert.Equal(t, "", joinInts(nil))
	assert.Equal(t, "7", joinInts([]int{7}))
	assert.Equal(t, "1, 2, 3", joinInts([]int{1, 2, 3}))
}
