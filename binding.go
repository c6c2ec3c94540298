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
	"strings"

	"go.uber.org/kontext/internal/kontextreflect"
)

// Kind is the way a binding produces its instance.
type Kind int

const (
	// KindImplementation constructs a concrete type.
	KindImplementation Kind = iota
	// KindFactory calls a function.
	KindFactory
	// KindFactoryAlias calls a method on an object resolved from the
	// container.
	KindFactoryAlias
	// KindAlias delegates to another binding.
	KindAlias
)

func (k Kind) String() string {
	switch k {
	case KindImplementation:
		return "implementation"
	case KindFactory:
		return "factory"
	case KindFactoryAlias:
		return "factory alias"
	case KindAlias:
		return "alias"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

type decorator struct {
	fn       reflect.Value
	priority int
}

// A Binding describes how the container produces instances of one type.
// Bindings are obtained from Builder.Bind and configured through their
// chainable methods. Configuring a binding again overwrites the earlier
// configuration.
type Binding struct {
	typ  reflect.Type
	kind Kind

	impl    reflect.Type
	factory reflect.Value
	holder  reflect.Type
	method  string
	alias   reflect.Type

	scope        reflect.Type
	markers      []any
	resolvers    map[string]any
	initializers []reflect.Value
	decorators   []decorator
	proxyAdapter reflect.Value

	// Where the binding was first declared.
	caller string

	// Incremented on every change so that cached recipes can be detected
	// as stale.
	version uint64
	owner   *registry
	frozen  bool
	err     error
}

func newBinding(t reflect.Type, reg *registry) *Binding {
	return &Binding{
		typ:       t,
		kind:      KindImplementation,
		impl:      t,
		resolvers: make(map[string]any),
		caller:    kontextreflect.Caller(),
		owner:     reg,
	}
}

// clone copies b into reg. The copy shares no mutable state with b.
func (b *Binding) clone(reg *registry, frozen bool) *Binding {
	c := *b
	c.owner = reg
	c.frozen = frozen
	c.markers = append([]any(nil), b.markers...)
	c.resolvers = make(map[string]any, len(b.resolvers))
	for k, v := range b.resolvers {
		c.resolvers[k] = v
	}
	c.initializers = append([]reflect.Value(nil), b.initializers...)
	c.decorators = append([]decorator(nil), b.decorators...)
	return &c
}

// Type returns the bound type.
func (b *Binding) Type() reflect.Type { return b.typ }

// Kind returns the kind of the binding.
func (b *Binding) Kind() Kind { return b.kind }

// Scope returns the scope marker type, or nil for dependent bindings.
func (b *Binding) Scope() reflect.Type { return b.scope }

// Implementation returns the type constructed by an implementation binding.
func (b *Binding) Implementation() reflect.Type { return b.impl }

// Alias returns the target of an alias binding.
func (b *Binding) Alias() reflect.Type { return b.alias }

// Markers returns the markers attached to the binding.
func (b *Binding) Markers() []any {
	return append([]any(nil), b.markers...)
}

// Err returns the configuration error recorded on the binding, if any.
func (b *Binding) Err() error { return b.err }

// Caller names the function that first declared the binding.
func (b *Binding) Caller() string { return b.caller }

func (b *Binding) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%v (%v", TypeName(b.typ), b.kind)
	switch b.kind {
	case KindImplementation:
		if b.impl != b.typ {
			fmt.Fprintf(&sb, " %v", TypeName(b.impl))
		}
	case KindFactory:
		fmt.Fprintf(&sb, " %v", kontextreflect.FuncName(b.factory.Interface()))
	case KindFactoryAlias:
		fmt.Fprintf(&sb, " %v.%v", TypeName(b.holder), b.method)
	case KindAlias:
		fmt.Fprintf(&sb, " %v", TypeName(b.alias))
	}
	if b.scope != nil {
		fmt.Fprintf(&sb, ", %v", TypeName(b.scope))
	}
	sb.WriteString(")")
	return sb.String()
}

// To selects how the binding produces its instance.
//
// A reflect.Type or a typed value (typically a nil pointer such as
// (*SMTPMailer)(nil)) selects an implementation binding for that type. A
// function selects a factory binding; its parameters are populated from the
// container and it returns the instance, optionally followed by an error.
// A target plus a method name selects a factory alias: the target type is
// resolved from the container and the named method is called.
func (b *Binding) To(target any, method ...string) *Binding {
	if !b.editable() {
		return b
	}
	if target == nil {
		return b.fail(fmt.Errorf("%w: nil target for %v", ErrInvalidArgument, TypeName(b.typ)))
	}

	b.impl, b.factory, b.holder, b.method, b.alias = nil, reflect.Value{}, nil, "", nil

	t, isType := target.(reflect.Type)
	switch {
	case len(method) > 0:
		if !isType {
			t = reflect.TypeOf(target)
		}
		b.kind = KindFactoryAlias
		b.holder = t
		b.method = method[0]
	case isType:
		b.kind = KindImplementation
		b.impl = t
	case reflect.TypeOf(target).Kind() == reflect.Func:
		b.kind = KindFactory
		b.factory = reflect.ValueOf(target)
	default:
		b.kind = KindImplementation
		b.impl = reflect.TypeOf(target)
	}
	return b.touch()
}

// ToAlias makes the binding delegate to the binding of t.
func (b *Binding) ToAlias(t reflect.Type) *Binding {
	if !b.editable() {
		return b
	}
	if t == nil {
		return b.fail(fmt.Errorf("%w: nil alias for %v", ErrInvalidArgument, TypeName(b.typ)))
	}
	b.impl, b.factory, b.holder, b.method = nil, reflect.Value{}, nil, ""
	b.kind = KindAlias
	b.alias = t
	return b.touch()
}

// Scoped sets the scope of the binding to the given marker, for example
// kontext.Singleton{}. A nil marker makes the binding dependent: a new
// instance is created on every request.
func (b *Binding) Scoped(marker any) *Binding {
	if !b.editable() {
		return b
	}
	switch m := marker.(type) {
	case nil:
		b.scope = nil
	case reflect.Type:
		b.scope = m
	default:
		b.scope = reflect.TypeOf(marker)
	}
	return b.touch()
}

// Marked attaches a marker to the binding. Markers can be enumerated with
// Container.EachMarked, and the setter injection markers (InjectMethods,
// AllSetters, SetterInjection) also drive method injection.
func (b *Binding) Marked(marker any) *Binding {
	if !b.editable() {
		return b
	}
	if marker == nil {
		return b.fail(fmt.Errorf("%w: nil marker for %v", ErrInvalidArgument, TypeName(b.typ)))
	}
	b.markers = append(b.markers, marker)
	return b.touch()
}

// Resolve supplies the value of a named parameter. The value may be a
// constant, a Param reference or a function, which is called with its own
// parameters populated from the container.
func (b *Binding) Resolve(param string, value any) *Binding {
	if !b.editable() {
		return b
	}
	b.resolvers[param] = value
	return b.touch()
}

// Initialize registers a function called with every new instance. It takes
// the instance followed by any dependencies, and may return a replacement
// instance and an error. Initializers run in registration order.
func (b *Binding) Initialize(fn any) *Binding {
	if !b.editable() {
		return b
	}
	if reflect.TypeOf(fn) == nil || reflect.TypeOf(fn).Kind() != reflect.Func {
		return b.fail(fmt.Errorf("%w: initializer for %v must be a function, got %T",
			ErrInvalidArgument, TypeName(b.typ), fn))
	}
	b.initializers = append(b.initializers, reflect.ValueOf(fn))
	return b.touch()
}

// Decorate registers a decorator. It has the shape of an initializer but
// must return the instance. Decorators run after initializers, higher
// priority first.
func (b *Binding) Decorate(fn any, priority int) *Binding {
	if !b.editable() {
		return b
	}
	if reflect.TypeOf(fn) == nil || reflect.TypeOf(fn).Kind() != reflect.Func {
		return b.fail(fmt.Errorf("%w: decorator for %v must be a function, got %T",
			ErrInvalidArgument, TypeName(b.typ), fn))
	}
	b.decorators = append(b.decorators, decorator{fn: reflect.ValueOf(fn), priority: priority})
	return b.touch()
}

// ProxiedBy sets the adapter used when the binding's scope hands out
// proxies. The adapter must be a func(*Proxy) T, usually generated by
// kontextgen.
func (b *Binding) ProxiedBy(adapter any) *Binding {
	if !b.editable() {
		return b
	}
	if adapter == nil {
		b.proxyAdapter = reflect.Value{}
		return b.touch()
	}
	b.proxyAdapter = reflect.ValueOf(adapter)
	return b.touch()
}

// editable reports whether b may be configured. Bindings of compiled
// containers are frozen.
func (b *Binding) editable() bool {
	if b.frozen {
		b.fail(fmt.Errorf("%w: binding of %v", ErrFrozen, TypeName(b.typ)))
		return false
	}
	return true
}

func (b *Binding) fail(err error) *Binding {
	b.err = err
	if b.owner != nil {
		b.owner.errs = append(b.owner.errs, err)
	}
	return b
}

func (b *Binding) touch() *Binding {
	b.version++
	if b.owner != nil {
		b.owner.invalidate()
	}
	return b
}

// markerMatches reports whether marker is of type t, or implements t when t
// is an interface.
func markerMatches(marker any, t reflect.Type) bool {
	mt := reflect.TypeOf(marker)
	if mt == t {
		return true
	}
	return t.Kind() == reflect.Interface && mt.Implements(t)
}
