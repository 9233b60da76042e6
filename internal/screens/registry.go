// Package screens holds the page registry and the demo screens. Each screen
// is a bridge.Responder with its own command vocabulary, matched
// case-sensitively; anything it doesn't recognise drops through to the
// built-in handlers.
package screens

import (
	"github.com/omnissa-archive/captive-web-view/internal/bridge"
	"github.com/omnissa-archive/captive-web-view/internal/keystore"
)

// Constructor makes a fresh responder for one visit to a screen.
type Constructor func() bridge.Responder

// Registry maps page names to screen constructors. It is populated once at
// startup and read-only afterwards, so it needs no locking.
type Registry struct {
	entries map[string]Constructor
	order   []string
}

func NewRegistry() *Registry {
	return &Registry{entries: map[string]Constructor{}}
}

// Add registers a screen under its page name.
func (registry *Registry) Add(page string, construct Constructor) {
	if _, ok := registry.entries[page]; !ok {
		registry.order = append(registry.order, page)
	}
	registry.entries[page] = construct
}

// Has reports whether a page is registered. Page names are case-sensitive.
func (registry *Registry) Has(page string) bool {
	_, ok := registry.entries[page]
	return ok
}

// New constructs the responder for a page, or nil for an unregistered page.
func (registry *Registry) New(page string) bridge.Responder {
	construct, ok := registry.entries[page]
	if !ok {
		return nil
	}
	return construct()
}

// Pages lists the registered page names in registration order.
func (registry *Registry) Pages() []string {
	pages := make([]string, len(registry.order))
	copy(pages, registry.order)
	return pages
}

// Default page names.
const (
	PageMain     = "Main"
	PageSpinner  = "Spinner"
	PageKeyStore = "KeyStore"
)

// Default builds the demo registry: the menu, the spinner poll demo, and
// the key store demo over the given store.
func Default(store *keystore.Store) *Registry {
	registry := NewRegistry()
	registry.Add(PageMain, func() bridge.Responder { return &Main{} })
	registry.Add(PageSpinner, func() bridge.Responder { return &Spinner{} })
	registry.Add(PageKeyStore, func() bridge.Responder { return &KeyStore{Store: store} })
	return registry
}
