package service

import (
	"github.com/rileyhilliard/fieldmon/internal/config"
	"github.com/rileyhilliard/fieldmon/internal/logger"
)

// Services bundles every collaborator the console and CLI talk to.
type Services struct {
	Devices *DeviceService
	Modbus  *ModbusService
	Alarms  *AlarmService
	Network *NetworkService
	Mqtt    *MqttService
	System  *SystemService
}

// New builds the collaborators from cfg.
func New(cfg *config.Config, version string, log logger.Logger) *Services {
	devices := NewDeviceService(cfg.Devices, cfg.Simulation.OfflineAddresses)
	return &Services{
		Devices: devices,
		Modbus:  NewModbusService(devices, cfg.Simulation.Seed, nil),
		Alarms:  NewAlarmService(cfg.AlarmRules, nil),
		Network: NewNetworkService(cfg.Network),
		Mqtt:    NewMqttService(cfg.MQTT, nil, log),
		System:  NewSystemService(cfg, devices, version, nil, nil),
	}
}
