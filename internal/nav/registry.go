package nav

import (
	"github.com/rileyhilliard/fieldmon/internal/errors"
)

// Page is the activation contract every registered page implements.
//
// Activate must tolerate an absent or mistyped Param. Deactivate must be
// safe to call repeatedly and must release anything the page acquired
// while it was visible.
type Page interface {
	Activate(p Param)
	Deactivate()
}

// PageFuncs adapts a pair of functions to Page. Nil fields are no-ops.
type PageFuncs struct {
	OnActivate   func(p Param)
	OnDeactivate func()
}

func (f PageFuncs) Activate(p Param) {
	if f.OnActivate != nil {
		f.OnActivate(p)
	}
}

func (f PageFuncs) Deactivate() {
	if f.OnDeactivate != nil {
		f.OnDeactivate()
	}
}

// Registry maps page ids to their Page implementation.
type Registry struct {
	pages map[PageID]Page
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{pages: make(map[PageID]Page)}
}

// Register binds page to id, replacing any earlier binding.
func (r *Registry) Register(id PageID, page Page) error {
	if !id.Valid() {
		return errors.Newf(errors.ErrNav, "cannot register unknown page %s", id)
	}
	if page == nil {
		return errors.Newf(errors.ErrNav, "nil page registered for %s", id)
	}
	r.pages[id] = page
	return nil
}

// MustRegister is Register for static wiring; it panics on error.
func (r *Registry) MustRegister(id PageID, page Page) {
	if err := r.Register(id, page); err != nil {
		panic(err)
	}
}

// Lookup returns the page bound to id.
func (r *Registry) Lookup(id PageID) (Page, bool) {
	p, ok := r.pages[id]
	return p, ok
}

// Len returns the number of registered pages.
func (r *Registry) Len() int {
	return len(r.pages)
}
