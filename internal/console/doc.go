// Package console is the operator panel: a fixed-size Bubble Tea program
// that hosts the twelve pages behind a nav.Controller. Timers run through a
// Bubble Tea backed session.Clock, so every callback (page refreshes, polling
// ticks, toasts) executes inside Update on the program goroutine.
package console
