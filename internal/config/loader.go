package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/rileyhilliard/fieldmon/internal/errors"
)

const (
	// ConfigFileName is looked up in the working directory.
	ConfigFileName = "fieldmon.yaml"
	// GlobalConfigDir is relative to the user's home directory.
	GlobalConfigDir = ".config/fieldmon"
	// GlobalConfigFile is the file name inside GlobalConfigDir.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. FIELDMON_MQTT_BROKER.
	EnvPrefix = "FIELDMON"
)

// Load reads and validates the config at path.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'fieldmon config init' to create one, or pass --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find returns the config path using the search order:
//  1. explicit path (--config)
//  2. fieldmon.yaml in the working directory
//  3. ~/.config/fieldmon/config.yaml
//
// An empty result with a nil error means no file exists.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	if cwd, err := os.Getwd(); err == nil {
		local := filepath.Join(cwd, ConfigFileName)
		if _, err := os.Stat(local); err == nil {
			return local, nil
		}
	}

	if global := GlobalPath(); global != "" {
		if _, err := os.Stat(global); err == nil {
			return global, nil
		}
	}

	return "", nil
}

// GlobalPath is ~/.config/fieldmon/config.yaml, or "" without a home dir.
func GlobalPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
}

// LoadOrDefault loads the config Find locates, or the defaults (with
// environment overrides applied) when there is none.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		cfg, err := parseConfig(newViper(), "environment")
		return cfg, "", err
	}
	cfg, err := Load(path)
	return cfg, path, err
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func parseConfig(v *viper.Viper, source string) (*Config, error) {
	cfg := DefaultConfig()
	// mapstructure overlays slices element by element, so start them empty.
	cfg.Devices = nil
	cfg.Simulation.OfflineAddresses = nil

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+source)
	}
	if len(cfg.Devices) == 0 && !v.IsSet("devices") {
		cfg.Devices = DefaultDevices()
	}
	cfg.Log.ExportDir = ExpandTilde(cfg.Log.ExportDir)
	cfg.Serial.LockDir = ExpandTilde(cfg.Serial.LockDir)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every scalar key so environment overrides resolve
// even when the file omits them.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("version", d.Version)
	v.SetDefault("console.width", d.Console.Width)
	v.SetDefault("console.height", d.Console.Height)
	v.SetDefault("console.idle_home", d.Console.IdleHome)

	v.SetDefault("serial.port", d.Serial.Port)
	v.SetDefault("serial.baud_rate", d.Serial.BaudRate)
	v.SetDefault("serial.data_bits", d.Serial.DataBits)
	v.SetDefault("serial.parity", d.Serial.Parity)
	v.SetDefault("serial.stop_bits", d.Serial.StopBits)
	v.SetDefault("serial.lock_dir", d.Serial.LockDir)

	v.SetDefault("network.dhcp", d.Network.DHCP)
	v.SetDefault("network.ip", d.Network.IP)
	v.SetDefault("network.gateway", d.Network.Gateway)
	v.SetDefault("network.subnet", d.Network.Subnet)
	v.SetDefault("network.dns1", d.Network.DNS1)
	v.SetDefault("network.dns2", d.Network.DNS2)

	v.SetDefault("mqtt.broker", d.MQTT.Broker)
	v.SetDefault("mqtt.port", d.MQTT.Port)
	v.SetDefault("mqtt.client_id", d.MQTT.ClientID)
	v.SetDefault("mqtt.username", d.MQTT.Username)
	v.SetDefault("mqtt.password", d.MQTT.Password)
	v.SetDefault("mqtt.topic", d.MQTT.Topic)
	v.SetDefault("mqtt.tls", d.MQTT.TLS)
	v.SetDefault("mqtt.publish_readings", d.MQTT.PublishReadings)

	v.SetDefault("alarm_rules.comm_timeout_ms", d.AlarmRules.CommTimeoutMs)
	v.SetDefault("alarm_rules.high_limit", d.AlarmRules.HighLimit)
	v.SetDefault("alarm_rules.low_limit", d.AlarmRules.LowLimit)
	v.SetDefault("alarm_rules.duration_sec", d.AlarmRules.DurationSec)
	v.SetDefault("alarm_rules.comm_alarm", d.AlarmRules.CommAlarm)
	v.SetDefault("alarm_rules.limit_alarm", d.AlarmRules.LimitAlarm)

	v.SetDefault("simulation.seed", d.Simulation.Seed)
	v.SetDefault("simulation.offline_addresses", d.Simulation.OfflineAddresses)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.export_dir", d.Log.ExportDir)
}

// ExpandTilde replaces a leading ~ with the user's home directory.
func ExpandTilde(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" || s == "0" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return def
	}
	return d
}
