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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"go.uber.org/kontext/internal/kontextreflect"
)

// A Plan is the compiled form of a builder: every binding validated and
// turned into a recipe. Containers built from a plan are frozen and resolve
// bindings without inspecting signatures.
type Plan struct {
	reg          *registry
	recipes      map[*Binding]*recipe
	scopes       []scopeRegistration
	params       map[string]any
	initializers []Initializer
	modules      []string
}

// PlanEntry describes how one binding is resolved.
type PlanEntry struct {
	// Type is the bound type name.
	Type string

	Kind Kind

	// Scope names the scope marker, or is empty for dependent bindings.
	Scope string

	// Target is the implementation type, the factory function, the holder
	// method or the alias target, depending on Kind.
	Target string

	Params       []ParamEntry
	Markers      []string
	Initializers []string
	Decorators   []string
	Proxied      bool
}

// ParamEntry describes one parameter of a binding.
type ParamEntry struct {
	Name     string
	Type     string
	Optional bool

	// Resolved is set when the binding supplies the parameter explicitly.
	Resolved bool
}

// Build returns a frozen container. It fails if a proxied binding has no
// adapter.
func (p *Plan) Build(opts ...Option) (*Container, error) {
	return newContainer(p, true, opts)
}

// Entries describes the bindings in declaration order.
func (p *Plan) Entries() []PlanEntry {
	entries := make([]PlanEntry, 0, len(p.reg.order))
	for _, b := range p.reg.order {
		entries = append(entries, p.recipes[b].entry())
	}
	return entries
}

// Verify checks that the plan resolves its bindings as described by
// entries, typically the Entries table of a kontextgen container. It fails
// with ErrStalePlan at the first binding that differs.
func (p *Plan) Verify(entries []PlanEntry) error {
	got := p.Entries()
	for i, want := range entries {
		if i >= len(got) {
			return fmt.Errorf("%w: %v is no longer bound", ErrStalePlan, want.Type)
		}
		if !reflect.DeepEqual(got[i], want) {
			if got[i].Type != want.Type {
				return fmt.Errorf("%w: expected binding of %v, found %v", ErrStalePlan, want.Type, got[i].Type)
			}
			return fmt.Errorf("%w: binding of %v changed", ErrStalePlan, want.Type)
		}
	}
	if len(got) > len(entries) {
		return fmt.Errorf("%w: %v is bound but wasn't generated", ErrStalePlan, got[len(entries)].Type)
	}
	return nil
}

// ProxyTypes returns the bound types that are handed out as proxies, in
// declaration order.
func (p *Plan) ProxyTypes() []reflect.Type {
	var types []reflect.Type
	for _, b := range p.reg.order {
		if p.recipes[b].proxied {
			types = append(types, b.typ)
		}
	}
	return types
}

// Modules returns the names of the installed modules in order.
func (p *Plan) Modules() []string {
	return append([]string(nil), p.modules...)
}

// ModulesHash identifies the installed modules, regardless of installation
// order. It changes when modules are added or removed.
func (p *Plan) ModulesHash() string {
	names := append([]string(nil), p.modules...)
	sort.Strings(names)
	return hashLines(names)
}

// ScopesHash identifies the registered scopes, regardless of registration
// order.
func (p *Plan) ScopesHash() string {
	names := make([]string, len(p.scopes))
	for i, s := range p.scopes {
		names[i] = TypeName(s.marker)
	}
	sort.Strings(names)
	return hashLines(names)
}

func hashLines(lines []string) string {
	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(sum[:])
}

func (r *recipe) entry() PlanEntry {
	b := r.binding
	e := PlanEntry{
		Type:    TypeName(b.typ),
		Kind:    r.kind,
		Proxied: r.proxied,
	}
	if b.scope != nil {
		e.Scope = TypeName(b.scope)
	}
	for _, m := range b.markers {
		e.Markers = append(e.Markers, TypeName(reflect.TypeOf(m)))
	}
	for _, i := range r.initializers {
		e.Initializers = append(e.Initializers, i.name)
	}
	for _, d := range r.decorators {
		e.Decorators = append(e.Decorators, d.name)
	}

	var params []param
	switch r.kind {
	case KindImplementation:
		e.Target = TypeName(b.impl)
		if r.impl != nil {
			params = r.impl.params
		}
	case KindFactory:
		e.Target = kontextreflect.FuncName(b.factory.Interface())
		params = r.factory.params
	case KindFactoryAlias:
		e.Target = r.factory.name
		params = r.factory.params
	case KindAlias:
		e.Target = TypeName(r.alias)
	}
	for _, prm := range params {
		_, resolved := b.resolvers[prm.name]
		e.Params = append(e.Params, ParamEntry{
			Name:     prm.name,
			Type:     TypeName(prm.typ),
			Optional: prm.optional,
			Resolved: resolved,
		})
	}
	return e
}
