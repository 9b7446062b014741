package config

import "time"

// CurrentConfigVersion is the schema version written by `fieldmon config init`.
const CurrentConfigVersion = 1

// Config is the complete fieldmon.yaml file.
type Config struct {
	Version    int              `yaml:"version" mapstructure:"version"`
	Console    ConsoleConfig    `yaml:"console" mapstructure:"console"`
	Serial     SerialConfig     `yaml:"serial" mapstructure:"serial"`
	Network    NetworkConfig    `yaml:"network" mapstructure:"network"`
	MQTT       MQTTConfig       `yaml:"mqtt" mapstructure:"mqtt"`
	AlarmRules AlarmRules       `yaml:"alarm_rules" mapstructure:"alarm_rules"`
	Devices    []DeviceConfig   `yaml:"devices" mapstructure:"devices"`
	Simulation SimulationConfig `yaml:"simulation" mapstructure:"simulation"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// ConsoleConfig sizes the fixed operator panel.
type ConsoleConfig struct {
	// Width and Height of the panel in cells. The console renders into this
	// box regardless of the terminal size.
	Width  int `yaml:"width" mapstructure:"width"`
	Height int `yaml:"height" mapstructure:"height"`

	// IdleHome returns to Home after this long without input ("0" disables).
	IdleHome string `yaml:"idle_home" mapstructure:"idle_home"`
}

// IdleHomeDuration parses IdleHome; empty or invalid means disabled.
func (c ConsoleConfig) IdleHomeDuration() time.Duration {
	return parseDuration(c.IdleHome, 0)
}

// SerialConfig describes the RS-485 port the Modbus devices hang off.
type SerialConfig struct {
	Port     string `yaml:"port" mapstructure:"port"`
	BaudRate int    `yaml:"baud_rate" mapstructure:"baud_rate"`
	DataBits int    `yaml:"data_bits" mapstructure:"data_bits"`
	// Parity is "none", "odd" or "even".
	Parity   string `yaml:"parity" mapstructure:"parity"`
	StopBits int    `yaml:"stop_bits" mapstructure:"stop_bits"`

	// LockDir holds the per-port bus lock. Empty means the system temp dir.
	LockDir string `yaml:"lock_dir,omitempty" mapstructure:"lock_dir"`
}

// NetworkConfig is the panel's Ethernet setup.
type NetworkConfig struct {
	DHCP    bool   `yaml:"dhcp" mapstructure:"dhcp"`
	IP      string `yaml:"ip" mapstructure:"ip"`
	Gateway string `yaml:"gateway" mapstructure:"gateway"`
	Subnet  string `yaml:"subnet" mapstructure:"subnet"`
	DNS1    string `yaml:"dns1" mapstructure:"dns1"`
	DNS2    string `yaml:"dns2" mapstructure:"dns2"`
}

// MQTTConfig is the uplink broker.
type MQTTConfig struct {
	Broker   string `yaml:"broker" mapstructure:"broker"`
	Port     int    `yaml:"port" mapstructure:"port"`
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
	Topic    string `yaml:"topic" mapstructure:"topic"`
	TLS      bool   `yaml:"tls" mapstructure:"tls"`

	// PublishReadings forwards every successful poll to Topic while connected.
	PublishReadings bool `yaml:"publish_readings" mapstructure:"publish_readings"`
}

// AlarmRules are stored and edited only; nothing evaluates them.
type AlarmRules struct {
	CommTimeoutMs int     `yaml:"comm_timeout_ms" mapstructure:"comm_timeout_ms"`
	HighLimit     float64 `yaml:"high_limit" mapstructure:"high_limit"`
	LowLimit      float64 `yaml:"low_limit" mapstructure:"low_limit"`
	DurationSec   int     `yaml:"duration_sec" mapstructure:"duration_sec"`
	CommAlarm     bool    `yaml:"comm_alarm" mapstructure:"comm_alarm"`
	LimitAlarm    bool    `yaml:"limit_alarm" mapstructure:"limit_alarm"`
}

// DeviceConfig is one Modbus slave.
type DeviceConfig struct {
	Name           string `yaml:"name" mapstructure:"name"`
	Type           string `yaml:"type" mapstructure:"type"`
	Address        int    `yaml:"address" mapstructure:"address"`
	FunctionCode   int    `yaml:"function_code" mapstructure:"function_code"`
	StartAddress   int    `yaml:"start_address" mapstructure:"start_address"`
	RegisterCount  int    `yaml:"register_count" mapstructure:"register_count"`
	PollIntervalMs int    `yaml:"poll_interval_ms" mapstructure:"poll_interval_ms"`
	Remark         string `yaml:"remark,omitempty" mapstructure:"remark"`
}

// SimulationConfig drives the in-memory register source.
type SimulationConfig struct {
	// Seed makes simulated values reproducible; 0 seeds from the clock.
	Seed int64 `yaml:"seed" mapstructure:"seed"`

	// OfflineAddresses lists Modbus addresses that never answer.
	OfflineAddresses []int `yaml:"offline_addresses" mapstructure:"offline_addresses"`
}

// LogConfig controls where console logs and exports go.
type LogConfig struct {
	// File receives log output while the console owns the terminal.
	File string `yaml:"file" mapstructure:"file"`
	// ExportDir is where `export` writes log snapshots. Supports ~.
	ExportDir string `yaml:"export_dir" mapstructure:"export_dir"`
}

// DefaultConfig mirrors the panel's factory settings.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Console: ConsoleConfig{
			Width:    80,
			Height:   24,
			IdleHome: "0",
		},
		Serial: SerialConfig{
			Port:     "/dev/ttymxc2",
			BaudRate: 9600,
			DataBits: 8,
			Parity:   "none",
			StopBits: 1,
		},
		Network: NetworkConfig{
			DHCP:    false,
			IP:      "192.168.1.100",
			Gateway: "192.168.1.1",
			Subnet:  "255.255.255.0",
			DNS1:    "8.8.8.8",
			DNS2:    "8.8.4.4",
		},
		MQTT: MQTTConfig{
			Broker:   "mqtt.example.com",
			Port:     1883,
			ClientID: "imx6ull_001",
			Topic:    "fieldmon/readings",
		},
		AlarmRules: AlarmRules{
			CommTimeoutMs: 3000,
			HighLimit:     100,
			LowLimit:      0,
			DurationSec:   5,
			CommAlarm:     true,
			LimitAlarm:    true,
		},
		Devices: DefaultDevices(),
		Simulation: SimulationConfig{
			OfflineAddresses: []int{3},
		},
		Log: LogConfig{
			ExportDir: "~/.local/share/fieldmon",
		},
	}
}

// DefaultDevices is the seed list used when the config names none.
func DefaultDevices() []DeviceConfig {
	return []DeviceConfig{
		{Name: "Temperature Sensor", Type: "Sensor", Address: 1, FunctionCode: 3, StartAddress: 0, RegisterCount: 10, PollIntervalMs: 1000},
		{Name: "Pressure Gauge", Type: "Sensor", Address: 2, FunctionCode: 3, StartAddress: 0, RegisterCount: 5, PollIntervalMs: 2000},
		{Name: "Flow Meter", Type: "Meter", Address: 3, FunctionCode: 4, StartAddress: 100, RegisterCount: 8, PollIntervalMs: 1500},
	}
}
