package console

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// formHost embeds a huh form in a page. The page owns the bound values;
// the form only edits them.
type formHost struct {
	form *huh.Form
}

// open replaces the current form and returns its init command.
func (h *formHost) open(width int, groups ...*huh.Group) tea.Cmd {
	h.form = huh.NewForm(groups...).
		WithShowHelp(false).
		WithWidth(width)
	return h.form.Init()
}

func (h *formHost) close() {
	h.form = nil
}

func (h *formHost) active() bool {
	return h.form != nil && h.form.State == huh.StateNormal
}

// update forwards msg and reports whether the form was just submitted.
// The command huh returns on completion is dropped so an embedded form can
// never quit the program.
func (h *formHost) update(msg tea.Msg) (tea.Cmd, bool) {
	if h.form == nil {
		return nil, false
	}
	m, cmd := h.form.Update(msg)
	if f, ok := m.(*huh.Form); ok {
		h.form = f
	}
	switch h.form.State {
	case huh.StateCompleted:
		return nil, true
	case huh.StateAborted:
		return nil, false
	}
	return cmd, false
}

func (h *formHost) view() string {
	if h.form == nil {
		return ""
	}
	return h.form.View()
}

// intField validates that s is an integer within [lo, hi].
func intField(name string, lo, hi int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("%s must be a number", name)
		}
		if n < lo || n > hi {
			return fmt.Errorf("%s must be %d-%d", name, lo, hi)
		}
		return nil
	}
}

func floatField(name string) func(string) error {
	return func(s string) error {
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return fmt.Errorf("%s must be a number", name)
		}
		return nil
	}
}

// atoi is used after validation, so failures read as zero.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atof(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func errRequired(name string) error {
	return fmt.Errorf("%s is required", name)
}
