// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"fmt"
	"sync"

	"github.com/ledgerd/ledgerd/tx"
)

// Registry maps transaction types to handlers, and contract functions to
// event handlers. It only grows, and is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	handlers  map[tx.Type]Handler
	providers []Provider
	events    map[string]EventHandler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[tx.Type]Handler),
		events:   make(map[string]EventHandler),
	}
}

// Register adds h to the static table for the given types.
// Registering a type twice panics.
func (r *Registry) Register(h Handler, types ...tx.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range types {
		if _, ok := r.handlers[t]; ok {
			panic(fmt.Sprintf("runtime: handler for %v registered twice", t))
		}
		r.handlers[t] = h
	}
}

// RegisterProvider appends a provider. Providers are consulted in registration order.
func (r *Registry) RegisterProvider(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = append(r.providers, p)
}

// RegisterEvent sets the event handler of a contract function.
func (r *Registry) RegisterEvent(function string, h EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[function]; ok {
		panic(fmt.Sprintf("runtime: event handler for %q registered twice", function))
	}
	r.events[function] = h
}

// Lookup finds the handler of t, first in the static table, then among providers.
func (r *Registry) Lookup(t tx.Type) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if h, ok := r.handlers[t]; ok {
		return h, true
	}
	for _, p := range r.providers {
		if p.Handles(t) {
			return p, true
		}
	}
	return nil, false
}

// LookupEvent finds the event handler of a contract function.
func (r *Registry) LookupEvent(function string) (EventHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.events[function]
	return h, ok
}
