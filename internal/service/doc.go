// Package service holds the console's external collaborators: the device
// and alarm registries, the simulated Modbus register source, network and
// serial settings, system information, and the MQTT uplink.
//
// Every operation answers with a Result. A non-zero Code is an error the
// caller shows to the operator; nothing here panics or returns a Go error
// across the boundary.
package service
