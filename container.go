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
	"errors"
	"fmt"
	"reflect"

	"github.com/benbjohnson/clock"
	"go.uber.org/kontext/config"
	"go.uber.org/kontext/kontextevent"
	"go.uber.org/multierr"
)

// Container resolves objects from bindings. Containers are created by
// Builder.Build and Plan.Build.
//
// A Container is not safe for concurrent use. It belongs to one logical
// request at a time.
type Container struct {
	reg      *registry
	compiled bool
	recipes  map[*Binding]*recipe
	structs  map[reflect.Type]*structPlan
	setterFn map[setterKey][]string

	scopes     map[reflect.Type]ScopeManager
	scopeOrder []ScopeManager

	params       map[string]any
	initializers []Initializer

	instances map[reflect.Type]any
	proxies   map[reflect.Type]any

	// Types under construction, outermost first.
	building []reflect.Type

	config config.Provider
	log    kontextevent.Logger
	clock  clock.Clock
}

var (
	_ Resolver        = (*Container)(nil)
	_ ExposedResolver = (*Container)(nil)
	_ ScopedResolver  = (*Container)(nil)
)

type setterKey struct {
	typ     reflect.Type
	markers string
}

func newContainer(p *Plan, compiled bool, opts []Option) (*Container, error) {
	o := buildOptions{
		logger: kontextevent.NopLogger,
		clock:  clock.New(),
	}
	for _, opt := range opts {
		opt.apply(&o)
	}
	if o.config == nil {
		cfg, err := config.NewYAMLProviderFromBytes()
		if err != nil {
			return nil, err
		}
		o.config = cfg
	}

	c := &Container{
		reg:          p.reg.snapshot(compiled),
		compiled:     compiled,
		recipes:      make(map[*Binding]*recipe, len(p.recipes)),
		structs:      make(map[reflect.Type]*structPlan),
		setterFn:     make(map[setterKey][]string),
		scopes:       make(map[reflect.Type]ScopeManager, len(p.scopes)),
		params:       p.params,
		initializers: p.initializers,
		instances:    make(map[reflect.Type]any),
		proxies:      make(map[reflect.Type]any),
		config:       o.config,
		log:          o.logger,
		clock:        o.clock,
	}
	for i, b := range p.reg.order {
		own := c.reg.order[i]
		r := *p.recipes[b]
		r.binding = own
		c.recipes[own] = &r
		if r.impl != nil {
			c.structs[r.impl.typ] = r.impl
		}
	}

	var errs error
	for _, s := range p.scopes {
		m := s.create()
		var err error
		if m == nil || m.Marker() != s.marker {
			err = fmt.Errorf("%w: factory for scope %v returned a manager for another scope",
				ErrInvalidArgument, TypeName(s.marker))
		} else {
			m.Correlate(c)
			c.scopes[s.marker] = m
			c.scopeOrder = append(c.scopeOrder, m)
		}
		c.log.LogEvent(&kontextevent.ScopeRegistered{Scope: TypeName(s.marker), Err: err})
		errs = multierr.Append(errs, err)
	}

	for _, b := range c.reg.order {
		var err error
		if r := c.recipes[b]; r != nil && r.proxied {
			err = r.checkAdapter()
		}
		c.log.LogEvent(boundEvent(b, err))
		errs = multierr.Append(errs, err)
	}
	if errs != nil {
		return nil, errs
	}
	return c, nil
}

func boundEvent(b *Binding, err error) *kontextevent.Bound {
	ev := &kontextevent.Bound{
		TypeName: TypeName(b.typ),
		Kind:     b.kind.String(),
		Caller:   b.caller,
		Err:      err,
	}
	if b.scope != nil {
		ev.Scope = TypeName(b.scope)
	}
	for _, m := range b.markers {
		ev.Markers = append(ev.Markers, TypeName(reflect.TypeOf(m)))
	}
	return ev
}

// Get returns an instance of t.
//
// The configuration and the container's own interfaces are returned
// directly. Otherwise Get uses, in order, an instance bound with
// BindInstance, the registered binding of t, and finally constructs t as an
// unbound struct.
func (c *Container) Get(t reflect.Type) (any, error) {
	return c.GetFor(t, nil)
}

// GetFor is Get on behalf of an injection point. Requests for the
// configuration provider receive the configuration section named after the
// point's type, if there is one.
func (c *Container) GetFor(t reflect.Type, point *InjectionPoint) (any, error) {
	switch t {
	case nil:
		return nil, fmt.Errorf("%w: nil type", ErrTypeNotFound)
	case _configType:
		return c.configFor(point), nil
	case _resolverType, _exposedType, _scopedType:
		return c, nil
	}

	if obj, ok := c.instances[t]; ok {
		return obj, nil
	}
	if p, ok := c.proxies[t]; ok {
		return p, nil
	}
	if b, ok := c.reg.lookup(t); ok {
		return c.GetBound(b, point)
	}
	return c.createObject(t, nil, nil)
}

// Get is the generic form of Container.Get.
func Get[T any](r Resolver) (T, error) {
	var zero T
	obj, err := r.Get(TypeOf[T]())
	if err != nil || obj == nil {
		return zero, err
	}
	return obj.(T), nil
}

// MustGet is like Get but panics on error.
func MustGet[T any](r Resolver) T {
	v, err := Get[T](r)
	if err != nil {
		panic(err)
	}
	return v
}

// GetBound returns an instance for the binding, honoring its scope.
// Compiled containers resolve the binding as it was when the plan was
// compiled.
func (c *Container) GetBound(b *Binding, point *InjectionPoint) (any, error) {
	r, err := c.recipe(b)
	if err != nil {
		return nil, err
	}
	if r.kind == KindAlias {
		return c.follow(r, point)
	}
	if r.scope == nil {
		return c.create(r)
	}

	m, ok := c.scopes[r.scope]
	if !ok {
		return nil, &ScopeNotFoundError{Scope: r.scope}
	}
	if !m.RequiresProxy() {
		return m.Lookup(r.binding, func() (any, error) { return c.create(r) })
	}

	if p, ok := c.proxies[r.typ]; ok {
		return p, nil
	}
	if err := r.checkAdapter(); err != nil {
		return nil, err
	}
	p := r.adapter.Call([]reflect.Value{reflect.ValueOf(newProxy(r.binding, m, c))})[0].Interface()
	c.proxies[r.typ] = p
	return p, nil
}

// GetByName returns an instance of the bound type with the given
// package-qualified name, as reported by TypeName.
func (c *Container) GetByName(name string) (any, error) {
	for t := range c.instances {
		if TypeName(t) == name {
			return c.Get(t)
		}
	}
	for _, b := range c.reg.order {
		if TypeName(b.typ) == name {
			return c.GetBound(b, nil)
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrTypeNotFound, name)
}

// Has reports whether the container knows t without constructing it
// implicitly: the configuration, the container interfaces, bound instances
// and bindings.
func (c *Container) Has(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if t == _configType || t == _resolverType || t == _exposedType || t == _scopedType {
		return true
	}
	if _, ok := c.instances[t]; ok {
		return true
	}
	_, ok := c.reg.lookup(t)
	return ok
}

// BindInstance makes Get return inst for t. Unless local is set, a factory
// binding returning inst is registered as well so that the instance shows
// up among the bindings. Compiled containers only accept local instances.
func (c *Container) BindInstance(t reflect.Type, inst any, local bool) error {
	switch {
	case t == nil:
		return fmt.Errorf("%w: nil type", ErrTypeNotFound)
	case forbidden(t):
		return fmt.Errorf("%w: %v is provided by the container", ErrInvalidArgument, TypeName(t))
	case inst != nil && !reflect.TypeOf(inst).AssignableTo(t):
		return fmt.Errorf("%w: %T is not assignable to %v", ErrInvalidArgument, inst, TypeName(t))
	case !local && c.compiled:
		return ErrFrozen
	}

	c.instances[t] = inst
	if local {
		return nil
	}

	v := valueOf(inst, t)
	fn := reflect.MakeFunc(reflect.FuncOf(nil, []reflect.Type{t}, false),
		func([]reflect.Value) []reflect.Value { return []reflect.Value{v} })
	return c.reg.replace(t).To(fn.Interface()).Err()
}

// Bind registers or returns the binding of t on a container built by
// Builder.Build. The binding is validated when it is first resolved.
// Every container holds its own copies of the builder's bindings, so
// changes are local to c.
func (c *Container) Bind(t reflect.Type) (*Binding, error) {
	if c.compiled {
		return nil, ErrFrozen
	}
	b := c.reg.bind(t)
	if err := b.Err(); err != nil {
		return nil, err
	}
	return b, nil
}

// Bindings returns the registered bindings in declaration order.
func (c *Container) Bindings() []*Binding {
	return append([]*Binding(nil), c.reg.order...)
}

// EachMarked calls fn for every marker of the given type, in binding order.
// Interface types match every marker implementing them. Iteration stops at
// the first error.
func (c *Container) EachMarked(marker reflect.Type, fn func(marker any, b *Binding) error) error {
	if marker == nil {
		return fmt.Errorf("%w: nil marker type", ErrTypeNotFound)
	}
	for _, mb := range c.reg.markedBy(marker) {
		if err := fn(mb.marker, mb.binding); err != nil {
			return err
		}
	}
	return nil
}

// EachMarked is the generic form of Container.EachMarked.
func EachMarked[M any](c ExposedResolver, fn func(marker M, b *Binding) error) error {
	return c.EachMarked(TypeOf[M](), func(m any, b *Binding) error {
		return fn(m.(M), b)
	})
}

// Parameter returns a container parameter.
func (c *Container) Parameter(name string) (any, bool) {
	v, ok := c.params[name]
	return v, ok
}

// Scope returns the manager of a scope marker.
func (c *Container) Scope(marker any) (ScopeManager, error) {
	mt, ok := marker.(reflect.Type)
	if !ok {
		mt = reflect.TypeOf(marker)
	}
	m, ok := c.scopes[mt]
	if !ok {
		return nil, &ScopeNotFoundError{Scope: mt}
	}
	return m, nil
}

// ApplicationScope returns the manager of the ApplicationScoped marker.
func (c *Container) ApplicationScope() (*ContextScope, error) {
	m, err := c.Scope(ApplicationScoped{})
	if err != nil {
		return nil, err
	}
	cs, ok := m.(*ContextScope)
	if !ok {
		return nil, fmt.Errorf("%w: application scope is managed by %T", ErrInvalidArgument, m)
	}
	return cs, nil
}

// Clear drops the instances held by every scope manager.
func (c *Container) Clear() {
	for _, m := range c.scopeOrder {
		m.Clear()
	}
}

// Compiled reports whether the container was built from a Plan.
func (c *Container) Compiled() bool { return c.compiled }

func (c *Container) configFor(point *InjectionPoint) config.Provider {
	if point == nil || point.Type == nil {
		return c.config
	}
	section := sectionName(point.Type)
	if section == "" || !c.config.Get(section).HasValue() {
		return c.config
	}
	return config.NewScopedProvider(section, c.config)
}

// recipe returns the validated recipe of b. Compiled containers only use
// the recipes of their plan, found by bound type. Other containers recompile
// a recipe when its binding changed.
func (c *Container) recipe(b *Binding) (*recipe, error) {
	r, ok := c.recipes[b]
	if c.compiled {
		if !ok {
			if own, found := c.reg.lookup(b.typ); found {
				r, ok = c.recipes[own]
			}
		}
		if !ok {
			return nil, fmt.Errorf("%w: %v is not part of the compiled plan", ErrFrozen, TypeName(b.typ))
		}
		return r, nil
	}
	if ok && r.version == b.version {
		return r, nil
	}

	proxyScopes := make(map[reflect.Type]bool, len(c.scopes))
	for t, m := range c.scopes {
		proxyScopes[t] = m.RequiresProxy()
	}
	r, err := compileBinding(b, proxyScopes)
	if err != nil {
		return nil, err
	}
	c.recipes[b] = r
	if r.impl != nil {
		c.structs[r.impl.typ] = r.impl
	}
	return r, nil
}

func (c *Container) structPlan(t reflect.Type) (*structPlan, error) {
	if sp, ok := c.structs[t]; ok {
		return sp, nil
	}
	if t.Kind() == reflect.Interface {
		return nil, &ContextLookupError{Type: t, Reason: "interface has no binding"}
	}
	sp, err := newStructPlan(t)
	if err != nil {
		var le *ContextLookupError
		if errors.As(err, &le) {
			le.Reason = "not a struct type and has no binding"
		}
		return nil, err
	}
	c.structs[t] = sp
	return sp, nil
}

func (c *Container) setters(t reflect.Type, markers []any) []string {
	key := setterKey{typ: t, markers: fmt.Sprint(markers...)}
	if names, ok := c.setterFn[key]; ok {
		return names
	}
	names := setterMethods(t, markers)
	c.setterFn[key] = names
	return names
}
