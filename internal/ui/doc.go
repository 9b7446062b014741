// Package ui holds the lipgloss building blocks shared by the console and
// the plain CLI output: the ANSI palette, status symbols, register
// sparklines and tables.
//
// Colors are ANSI codes so output stays readable on the serial consoles
// and cheap terminals found next to field panels. DisableColors switches
// every style to plain text for --no-color and non-TTY output.
package ui
