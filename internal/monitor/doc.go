// Package monitor ties the Monitor page to a polling session.
//
// The Coordinator enforces one rule: the Monitor page owns at most one
// polling session and that session never outlives the page. Entering the
// page never starts acquisition; leaving it always stops acquisition.
//
// History keeps a short per-register trend for the register table's
// sparklines.
package monitor
