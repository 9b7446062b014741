package config

import (
	"fmt"
	"time"

	"github.com/rileyhilliard/fieldmon/internal/errors"
)

// Device field limits, shared by config validation and the device registry.
const (
	MinModbusAddress  = 1
	MaxModbusAddress  = 247
	MinFunctionCode   = 1
	MaxFunctionCode   = 6
	MaxStartAddress   = 65535
	MinRegisterCount  = 1
	MaxRegisterCount  = 125
	MinPollIntervalMs = 100
	MaxPollIntervalMs = 60000
)

// RuleError is a device field that is out of range. Code is the numeric
// result code the device registry reports for it (1-5).
type RuleError struct {
	Code    int
	Field   string
	Message string
}

func (e *RuleError) Error() string {
	return e.Message
}

// ValidateDevice checks d against the Modbus field limits, first failure wins.
func ValidateDevice(d DeviceConfig) *RuleError {
	switch {
	case d.Address < MinModbusAddress || d.Address > MaxModbusAddress:
		return &RuleError{Code: 1, Field: "address", Message: "Modbus address must be 1-247"}
	case d.FunctionCode < MinFunctionCode || d.FunctionCode > MaxFunctionCode:
		return &RuleError{Code: 2, Field: "function_code", Message: "Invalid function code"}
	case d.StartAddress < 0 || d.StartAddress > MaxStartAddress:
		return &RuleError{Code: 3, Field: "start_address", Message: "Invalid start address"}
	case d.RegisterCount < MinRegisterCount || d.RegisterCount > MaxRegisterCount:
		return &RuleError{Code: 4, Field: "register_count", Message: "Register count must be 1-125"}
	case d.PollIntervalMs < MinPollIntervalMs || d.PollIntervalMs > MaxPollIntervalMs:
		return &RuleError{Code: 5, Field: "poll_interval_ms", Message: "Poll interval must be 100-60000ms"}
	}
	return nil
}

var validBaudRates = map[int]bool{
	1200: true, 2400: true, 4800: true, 9600: true, 19200: true, 38400: true, 57600: true, 115200: true,
}

var validParity = map[string]bool{"none": true, "odd": true, "even": true}

// Validate reports the first problem in cfg as a CONFIG error.
func Validate(cfg *Config) error {
	if cfg.Console.Width < 40 || cfg.Console.Height < 12 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Console size %dx%d is too small", cfg.Console.Width, cfg.Console.Height),
			"Use at least 40x12 under console.width and console.height")
	}
	if cfg.Console.IdleHome != "" && cfg.Console.IdleHome != "0" {
		if _, err := time.ParseDuration(cfg.Console.IdleHome); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Invalid console.idle_home: "+cfg.Console.IdleHome,
				"Use a duration like 2m, or 0 to disable")
		}
	}

	if !validBaudRates[cfg.Serial.BaudRate] {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unsupported baud rate %d", cfg.Serial.BaudRate),
			"Pick one of 1200-115200 (standard rates)")
	}
	if !validParity[cfg.Serial.Parity] {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Invalid serial.parity %q", cfg.Serial.Parity),
			"Use none, odd or even")
	}

	if cfg.MQTT.Port < 1 || cfg.MQTT.Port > 65535 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Invalid mqtt.port %d", cfg.MQTT.Port),
			"Use a TCP port between 1 and 65535")
	}

	if cfg.AlarmRules.LowLimit > cfg.AlarmRules.HighLimit {
		return errors.New(errors.ErrConfig,
			"alarm_rules.low_limit is above alarm_rules.high_limit",
			"Swap the limits")
	}

	seen := make(map[int]string)
	for i, d := range cfg.Devices {
		if re := ValidateDevice(d); re != nil {
			return errors.WrapWithCode(re, errors.ErrConfig,
				fmt.Sprintf("Device %d (%s) is invalid", i, d.Name),
				"Fix devices["+fmt.Sprint(i)+"]."+re.Field)
		}
		if other, dup := seen[d.Address]; dup {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Devices %q and %q share Modbus address %d", other, d.Name, d.Address),
				"Give every device a unique address")
		}
		seen[d.Address] = d.Name
	}

	return nil
}
