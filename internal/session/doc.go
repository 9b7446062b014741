// Package session drives live register acquisition for one device at a
// time.
//
// A Session reads once immediately on start and then once per PollInterval
// tick from a Clock. Read failures set StatusError but never stop the
// session; only StopSession (or starting another session) does.
//
// Everything here assumes cooperative, single-threaded scheduling: clock
// callbacks, navigation and operator actions run one at a time on the same
// event loop. Clock.Cancel invalidates a handle before returning, so a tick
// already queued for a cancelled handle is dropped rather than delivered.
package session
