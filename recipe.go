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
	"sort"

	"go.uber.org/kontext/internal/kontextreflect"
)

// A recipe is the validated, precomputed form of a binding. Resolving a
// binding through its recipe performs no signature inspection.
type recipe struct {
	binding *Binding
	version uint64

	typ   reflect.Type
	kind  Kind
	scope reflect.Type

	// impl is nil for implementation bindings of types that can't be
	// constructed; abstract explains why.
	impl     *structPlan
	abstract string

	// factory describes the factory function, or the holder method of a
	// factory alias. fn is unset for factory aliases.
	factory *callPlan
	holder  reflect.Type
	method  string

	alias reflect.Type

	resolvers    map[string]any
	nested       map[string]*callPlan
	initializers []*callPlan
	decorators   []*callPlan
	setters      []any

	proxied bool
	adapter reflect.Value
}

func compileBinding(b *Binding, proxyScopes map[reflect.Type]bool) (*recipe, error) {
	if b.err != nil {
		return nil, b.err
	}

	r := &recipe{
		binding:   b,
		version:   b.version,
		typ:       b.typ,
		kind:      b.kind,
		scope:     b.scope,
		holder:    b.holder,
		method:    b.method,
		alias:     b.alias,
		resolvers: make(map[string]any, len(b.resolvers)),
		nested:    make(map[string]*callPlan),
	}
	for k, v := range b.resolvers {
		r.resolvers[k] = v
	}

	var err error
	switch b.kind {
	case KindImplementation:
		err = r.compileImplementation(b)
	case KindFactory:
		err = r.compileFactory(b)
	case KindFactoryAlias:
		err = r.compileFactoryAlias(b)
	case KindAlias:
		if b.alias == b.typ {
			err = fmt.Errorf("%w: %v is an alias of itself", ErrInvalidArgument, TypeName(b.typ))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%v, bound by %v: %w", TypeName(b.typ), b.caller, err)
	}

	for name, v := range b.resolvers {
		rv := reflect.ValueOf(v)
		if v == nil || rv.Kind() != reflect.Func {
			continue
		}
		// Function values that can't be called as factories are passed
		// through as they are.
		if p, err := newCallPlan(rv, rv.Type(), kontextreflect.FuncName(v), 0); err == nil && p.out != nil {
			r.nested[name] = p
		}
	}

	for _, fn := range b.initializers {
		p, err := newCallPlan(fn, fn.Type(), kontextreflect.FuncName(fn.Interface()), 1)
		if err != nil {
			return nil, fmt.Errorf("bad initializer for %v, bound by %v: %w", TypeName(b.typ), b.caller, err)
		}
		r.initializers = append(r.initializers, p)
	}

	decorators := append([]decorator(nil), b.decorators...)
	sort.SliceStable(decorators, func(i, j int) bool {
		return decorators[i].priority > decorators[j].priority
	})
	for _, d := range decorators {
		p, err := newCallPlan(d.fn, d.fn.Type(), kontextreflect.FuncName(d.fn.Interface()), 1)
		if err == nil && p.out == nil {
			err = fmt.Errorf("%w: %v must return the decorated value", ErrInvalidArgument, p.name)
		}
		if err != nil {
			return nil, fmt.Errorf("bad decorator for %v, bound by %v: %w", TypeName(b.typ), b.caller, err)
		}
		r.decorators = append(r.decorators, p)
	}

	for _, m := range b.markers {
		switch m.(type) {
		case InjectMethods, AllSetters, SetterInjection, *SetterInjection:
			r.setters = append(r.setters, m)
		}
	}

	if b.kind != KindAlias && b.scope != nil && proxyScopes[b.scope] {
		if err := CheckProxyable(b.typ); err != nil {
			return nil, fmt.Errorf("%v, bound by %v: %w", TypeName(b.typ), b.caller, err)
		}
		r.proxied = true
		r.adapter = b.proxyAdapter
	}
	return r, nil
}

func (r *recipe) compileImplementation(b *Binding) error {
	impl := b.impl
	if _, ok := structElem(impl); !ok {
		if impl != b.typ {
			return fmt.Errorf("%w: %v can't be constructed as %v",
				ErrInvalidArgument, TypeName(impl), TypeName(b.typ))
		}
		if impl.Kind() == reflect.Interface {
			r.abstract = "interface has no implementation"
		} else {
			r.abstract = "not a struct type"
		}
		return nil
	}
	if !impl.AssignableTo(b.typ) {
		return fmt.Errorf("%w: %v is not assignable to %v",
			ErrInvalidArgument, TypeName(impl), TypeName(b.typ))
	}

	sp, err := newStructPlan(impl)
	if err != nil {
		return err
	}
	r.impl = sp
	return nil
}

func (r *recipe) compileFactory(b *Binding) error {
	name := kontextreflect.FuncName(b.factory.Interface())
	p, err := newCallPlan(b.factory, b.factory.Type(), name, 0)
	if err != nil {
		return err
	}
	if err := checkProduces(p, b.typ); err != nil {
		return err
	}
	r.factory = p
	return nil
}

func (r *recipe) compileFactoryAlias(b *Binding) error {
	name := TypeName(b.holder) + "." + b.method
	m, ok := b.holder.MethodByName(b.method)
	if !ok {
		return fmt.Errorf("%w: %v has no exported method %q",
			ErrInvalidArgument, TypeName(b.holder), b.method)
	}

	// Interface methods have no receiver parameter, concrete ones do.
	mt := m.Type
	if b.holder.Kind() != reflect.Interface {
		in := make([]reflect.Type, 0, mt.NumIn()-1)
		for i := 1; i < mt.NumIn(); i++ {
			in = append(in, mt.In(i))
		}
		out := make([]reflect.Type, 0, mt.NumOut())
		for i := 0; i < mt.NumOut(); i++ {
			out = append(out, mt.Out(i))
		}
		mt = reflect.FuncOf(in, out, mt.IsVariadic())
	}

	p, err := newCallPlan(reflect.Value{}, mt, name, 0)
	if err != nil {
		return err
	}
	if err := checkProduces(p, b.typ); err != nil {
		return err
	}
	r.factory = p
	return nil
}

func checkProduces(p *callPlan, t reflect.Type) error {
	switch {
	case p.out == nil:
		return fmt.Errorf("%w: %v must return a value", ErrInvalidArgument, p.name)
	case p.out.AssignableTo(t), p.out.Kind() == reflect.Interface:
		return nil
	}
	return fmt.Errorf("%w: %v returns %v, which is not assignable to %v",
		ErrInvalidArgument, p.name, TypeName(p.out), TypeName(t))
}

// CheckProxyable reports whether proxies of t can exist: t must be an
// interface whose methods are all exported.
func CheckProxyable(t reflect.Type) error {
	if t.Kind() != reflect.Interface {
		return fmt.Errorf("%w: %v is not an interface", ErrProxyImpossible, TypeName(t))
	}
	for i := 0; i < t.NumMethod(); i++ {
		if m := t.Method(i); m.PkgPath != "" {
			return fmt.Errorf("%w: %v is sealed by unexported method %v",
				ErrProxyImpossible, TypeName(t), m.Name)
		}
	}
	return nil
}

// checkAdapter validates the proxy adapter of a proxied recipe.
func (r *recipe) checkAdapter() error {
	t := r.typ
	if !r.adapter.IsValid() {
		return fmt.Errorf("%w: %v has no proxy adapter; generate one with kontextgen",
			ErrProxyImpossible, TypeName(t))
	}
	at := r.adapter.Type()
	if at.Kind() != reflect.Func || at.NumIn() != 1 || at.In(0) != _proxyPtrType ||
		at.NumOut() != 1 || !at.Out(0).AssignableTo(t) {
		return fmt.Errorf("%w: proxy adapter for %v must be a func(*kontext.Proxy) %v, got %v",
			ErrProxyImpossible, TypeName(t), t, at)
	}
	return nil
}
