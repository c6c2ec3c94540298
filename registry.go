// Copyright (c) 2026 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package kontext

import (
	"fmt"
	"reflect"
)

// registry holds the bindings of a builder or container in declaration
// order.
type registry struct {
	bindings map[reflect.Type]*Binding
	order    []*Binding
	errs     []error

	// Derived indexes, dropped whenever a binding changes.
	proxyScopes map[reflect.Type]bool
	proxies     []*Binding
	proxiesOK   bool
	marked      map[reflect.Type][]markedBinding
}

type markedBinding struct {
	marker  any
	binding *Binding
}

func newRegistry() *registry {
	return &registry{bindings: make(map[reflect.Type]*Binding)}
}

func (r *registry) bind(t reflect.Type) *Binding {
	if b, ok := r.bindings[t]; ok {
		return b
	}
	b := newBinding(t, r)
	if t == nil {
		return b.detach(fmt.Errorf("%w: can't bind a nil type", ErrTypeNotFound))
	}
	if forbidden(t) {
		return b.detach(fmt.Errorf("%w: %v is provided by the container and can't be bound",
			ErrInvalidArgument, TypeName(t)))
	}
	r.bindings[t] = b
	r.order = append(r.order, b)
	r.invalidate()
	return b
}

// replace registers a fresh binding for t in place of the existing one.
func (r *registry) replace(t reflect.Type) *Binding {
	old, ok := r.bindings[t]
	if !ok {
		return r.bind(t)
	}
	b := newBinding(t, r)
	r.bindings[t] = b
	for i, o := range r.order {
		if o == old {
			r.order[i] = b
		}
	}
	r.invalidate()
	return b
}

func (r *registry) lookup(t reflect.Type) (*Binding, bool) {
	b, ok := r.bindings[t]
	return b, ok
}

func (r *registry) invalidate() {
	r.proxies, r.proxiesOK = nil, false
	r.marked = nil
}

// proxyBindings returns the bindings whose scope hands out proxies.
func (r *registry) proxyBindings() []*Binding {
	if r.proxiesOK {
		return r.proxies
	}
	var out []*Binding
	for _, b := range r.order {
		if b.kind != KindAlias && b.scope != nil && r.proxyScopes[b.scope] {
			out = append(out, b)
		}
	}
	r.proxies, r.proxiesOK = out, true
	return out
}

// markedBy returns the bindings carrying a marker of type t.
func (r *registry) markedBy(t reflect.Type) []markedBinding {
	if r.marked == nil {
		r.marked = make(map[reflect.Type][]markedBinding)
	}
	if mb, ok := r.marked[t]; ok {
		return mb
	}
	var out []markedBinding
	for _, b := range r.order {
		for _, m := range b.markers {
			if markerMatches(m, t) {
				out = append(out, markedBinding{marker: m, binding: b})
			}
		}
	}
	r.marked[t] = out
	return out
}

// snapshot copies the registry and its bindings. Configuring a binding of
// the copy leaves the original untouched. Frozen copies reject changes.
func (r *registry) snapshot(frozen bool) *registry {
	s := &registry{
		bindings:    make(map[reflect.Type]*Binding, len(r.bindings)),
		order:       make([]*Binding, len(r.order)),
		proxyScopes: make(map[reflect.Type]bool, len(r.proxyScopes)),
	}
	for t, ok := range r.proxyScopes {
		s.proxyScopes[t] = ok
	}
	for i, b := range r.order {
		c := b.clone(s, frozen)
		s.order[i] = c
		s.bindings[c.typ] = c
	}
	return s
}

// detach records err against the registry and returns b, which is not
// registered and so configures nothing.
func (b *Binding) detach(err error) *Binding {
	b.fail(err)
	b.owner = nil
	return b
}
