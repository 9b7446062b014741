package session

import "github.com/rileyhilliard/fieldmon/internal/service"

//go:generate mockgen -destination=mock_session.go -package=session github.com/rileyhilliard/fieldmon/internal/session Reader

// Reader is the register-read collaborator a Session polls.
// service.ModbusService satisfies it.
type Reader interface {
	// MarkPolling is bookkeeping only and cannot fail.
	MarkPolling(deviceID int, active bool)
	// ReadCurrentValues must return within a tick; failures come back as a
	// non-zero Result code.
	ReadCurrentValues(deviceID int) service.Result[[]service.RegisterReading]
}
