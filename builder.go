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

	"go.uber.org/kontext/internal/kontextreflect"
	"go.uber.org/multierr"
)

// A Module configures a builder. Applications are assembled by installing
// modules in order; later modules may reconfigure bindings declared by
// earlier ones.
type Module interface {
	Configure(b *Builder)
}

// ModuleFunc adapts a function to a Module.
type ModuleFunc func(b *Builder)

// Configure calls f.
func (f ModuleFunc) Configure(b *Builder) { f(b) }

// An Initializer runs for every object the container creates, before the
// binding's own initializers. b is nil for objects created without a
// binding. Returning a non-nil object replaces obj.
type Initializer func(obj any, b *Binding) (any, error)

// ScopeFactory creates the scope manager of one container.
type ScopeFactory func() ScopeManager

type scopeRegistration struct {
	marker reflect.Type
	create ScopeFactory
}

// Builder collects bindings, scopes, parameters and initializers, and
// builds containers from them. Errors made while configuring are recorded
// and reported by Err, Build and Compile.
type Builder struct {
	reg          *registry
	scopes       []scopeRegistration
	params       map[string]any
	initializers []Initializer
	modules      []string
	errs         []error
}

// NewBuilder returns a builder with the Singleton and ApplicationScoped
// scopes registered.
func NewBuilder() *Builder {
	b := &Builder{
		reg:    newRegistry(),
		params: make(map[string]any),
	}
	b.reg.proxyScopes = make(map[reflect.Type]bool)
	_ = b.RegisterScope(Singleton{}, NewSingletonScope)
	_ = b.RegisterScope(ApplicationScoped{}, func() ScopeManager {
		return NewContextScope(ApplicationScoped{})
	})
	return b
}

// Bind returns the binding of t, registering a dependent implementation
// binding of t itself if there is none yet. Bind always returns the same
// binding for the same type.
func (b *Builder) Bind(t reflect.Type) *Binding {
	return b.reg.bind(t)
}

// Bind is the generic form of Builder.Bind.
func Bind[T any](b *Builder) *Binding {
	return b.Bind(TypeOf[T]())
}

// Bindings returns the registered bindings in declaration order.
func (b *Builder) Bindings() []*Binding {
	return append([]*Binding(nil), b.reg.order...)
}

// ProxyBindings returns the bindings whose scope hands out proxies. The
// result is cached until a binding changes.
func (b *Builder) ProxyBindings() []*Binding {
	return b.reg.proxyBindings()
}

// Install runs the given modules in order.
func (b *Builder) Install(mods ...Module) {
	for _, m := range mods {
		if m == nil {
			b.errs = append(b.errs, fmt.Errorf("%w: nil module", ErrInvalidArgument))
			continue
		}
		b.modules = append(b.modules, moduleName(m))
		m.Configure(b)
	}
}

func moduleName(m Module) string {
	if f, ok := m.(ModuleFunc); ok {
		return kontextreflect.FuncName(f)
	}
	return TypeName(reflect.TypeOf(m))
}

// SetParameter sets a container parameter. Parameters are read through
// Param references and Container.Parameter.
func (b *Builder) SetParameter(name string, value any) {
	b.params[name] = value
}

// RegisterScope registers the manager factory for a scope marker. Every
// built container calls the factory once.
func (b *Builder) RegisterScope(marker any, newManager ScopeFactory) error {
	mt, ok := marker.(reflect.Type)
	if !ok {
		mt = reflect.TypeOf(marker)
	}
	var err error
	switch {
	case mt == nil || newManager == nil:
		err = fmt.Errorf("%w: scope registration needs a marker and a factory", ErrInvalidArgument)
	default:
		for _, s := range b.scopes {
			if s.marker == mt {
				err = fmt.Errorf("%w: %v", ErrDuplicateScope, TypeName(mt))
				break
			}
		}
	}
	if err != nil {
		b.errs = append(b.errs, err)
		return err
	}

	b.scopes = append(b.scopes, scopeRegistration{marker: mt, create: newManager})
	b.reg.proxyScopes[mt] = newManager().RequiresProxy()
	b.reg.invalidate()
	return nil
}

// Initialize registers a container-wide initializer.
func (b *Builder) Initialize(fn Initializer) {
	if fn == nil {
		b.errs = append(b.errs, fmt.Errorf("%w: nil initializer", ErrInvalidArgument))
		return
	}
	b.initializers = append(b.initializers, fn)
}

// Err returns the configuration errors recorded so far.
func (b *Builder) Err() error {
	return multierr.Combine(append(append([]error(nil), b.errs...), b.reg.errs...)...)
}

// Build validates the bindings and returns a container that resolves them
// on demand. Bindings added to the container later are validated when they
// are first used.
func (b *Builder) Build(opts ...Option) (*Container, error) {
	p, err := b.plan()
	if err != nil {
		return nil, err
	}
	return newContainer(p, false, opts)
}

// Compile validates the bindings and precomputes how each of them is
// resolved. The plan builds frozen containers and feeds kontextgen.
func (b *Builder) Compile() (*Plan, error) {
	return b.plan()
}

func (b *Builder) plan() (*Plan, error) {
	if err := b.Err(); err != nil {
		return nil, err
	}

	p := &Plan{
		reg:          b.reg.snapshot(true),
		recipes:      make(map[*Binding]*recipe, len(b.reg.order)),
		scopes:       append([]scopeRegistration(nil), b.scopes...),
		params:       make(map[string]any, len(b.params)),
		initializers: append([]Initializer(nil), b.initializers...),
		modules:      append([]string(nil), b.modules...),
	}
	for k, v := range b.params {
		p.params[k] = v
	}

	var errs error
	for _, bd := range p.reg.order {
		r, err := compileBinding(bd, p.reg.proxyScopes)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		p.recipes[bd] = r
	}
	if errs != nil {
		return nil, errs
	}
	if err := aliasCycles(p.reg); err != nil {
		return nil, err
	}
	return p, nil
}

// aliasCycles reports alias chains that lead back to themselves.
func aliasCycles(reg *registry) error {
	var errs error
	checked := make(map[reflect.Type]bool)
	for _, b := range reg.order {
		var chain []reflect.Type
		at := make(map[reflect.Type]int)
		for t := b.typ; !checked[t]; {
			cur, ok := reg.lookup(t)
			if !ok || cur.kind != KindAlias {
				break
			}
			if i, seen := at[t]; seen {
				cycle := append(append([]reflect.Type(nil), chain[i:]...), t)
				errs = multierr.Append(errs, &CyclicDependencyError{Chain: cycle})
				break
			}
			at[t] = len(chain)
			chain = append(chain, t)
			t = cur.alias
		}
		for _, t := range chain {
			checked[t] = true
		}
	}
	return errs
}
