package cli

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/rileyhilliard/fieldmon/internal/errors"
)

// Machine mode flag - when true, outputs JSON and suppresses human-friendly decorations
var machineMode bool

// MachineMode returns true if machine-readable output is enabled
func MachineMode() bool {
	return machineMode
}

// JSONEnvelope wraps command output in a consistent structure for machine parsing.
type JSONEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty"`
}

// JSONError provides structured error information for machine parsing.
type JSONError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Error codes for machine-readable output.
const (
	ErrCodeConfigNotFound = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "CONFIG_INVALID"
	ErrCodeDeviceNotFound = "DEVICE_NOT_FOUND"
	ErrCodeDeviceFailed   = "DEVICE_FAILED"
	ErrCodeAlarmFailed    = "ALARM_FAILED"
	ErrCodeSessionInvalid = "SESSION_INVALID"
	ErrCodeMqttFailed     = "MQTT_FAILED"
	ErrCodeCommandFailed  = "COMMAND_FAILED"
	ErrCodeUnknown        = "UNKNOWN"
)

// WriteJSONSuccess writes a successful response with data to the writer.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{Success: true, Data: data})
}

// WriteJSONFromError converts a Go error to a JSON error response.
func WriteJSONFromError(w io.Writer, err error) error {
	return writeJSONEnvelope(w, JSONEnvelope{Success: false, Error: ErrorToJSON(err)})
}

func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// ErrorToJSON converts a Go error to a JSONError with appropriate code mapping.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}

	if fe, ok := err.(*errors.Error); ok {
		return &JSONError{
			Code:       mapErrorCode(fe.Code, fe.Message),
			Message:    fe.Message,
			Suggestion: fe.Suggestion,
		}
	}

	return &JSONError{
		Code:    ErrCodeUnknown,
		Message: err.Error(),
	}
}

// mapErrorCode maps internal error codes to machine-readable codes.
func mapErrorCode(internalCode, message string) string {
	notFound := strings.Contains(strings.ToLower(message), "not found")

	switch internalCode {
	case errors.ErrConfig:
		if notFound {
			return ErrCodeConfigNotFound
		}
		return ErrCodeConfigInvalid
	case errors.ErrDevice:
		if notFound {
			return ErrCodeDeviceNotFound
		}
		return ErrCodeDeviceFailed
	case errors.ErrAlarm:
		return ErrCodeAlarmFailed
	case errors.ErrSession:
		return ErrCodeSessionInvalid
	case errors.ErrMqtt:
		return ErrCodeMqttFailed
	case errors.ErrExec:
		return ErrCodeCommandFailed
	}
	return ErrCodeUnknown
}
