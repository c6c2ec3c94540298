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
	"path"
	"reflect"
	"strings"
	"time"

	"go.uber.org/kontext/internal/kontextreflect"
	"go.uber.org/kontext/kontextevent"
)

// enter pushes t onto the construction stack. The returned function pops
// it again and must be deferred.
func (c *Container) enter(t reflect.Type) (func(), error) {
	for i, u := range c.building {
		if u != t {
			continue
		}
		chain := append(append([]reflect.Type(nil), c.building[i:]...), t)
		err := &CyclicDependencyError{Chain: chain}
		c.log.LogEvent(&kontextevent.CycleDetected{Chain: err.names()})
		return func() {}, err
	}

	c.building = append(c.building, t)
	n := len(c.building)
	return func() { c.building = c.building[:n-1] }, nil
}

// CreateObject constructs t, which must be a struct or a pointer to a
// struct, populating its injectable fields. Resolvers supply the values of
// named fields. Container-wide initializers run on the new object, followed
// by setter injection for the given markers.
func (c *Container) CreateObject(t reflect.Type, resolvers map[string]any, setterMarkers ...any) (any, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: can't create an object of nil type", ErrTypeNotFound)
	}
	return c.createObject(t, resolvers, setterMarkers)
}

func (c *Container) createObject(t reflect.Type, resolvers map[string]any, setters []any) (obj any, err error) {
	sp, err := c.structPlan(t)
	if err != nil {
		return nil, err
	}

	done, err := c.enter(t)
	defer done()
	if err != nil {
		return nil, err
	}

	defer c.logInstantiated(t, nil, c.clock.Now(), &err)

	obj, err = c.construct(sp, resolvers, nil)
	if err != nil {
		return nil, err
	}
	if obj, err = c.initialize(obj, nil, nil); err != nil {
		return nil, err
	}
	if err := c.injectSetters(obj, setters); err != nil {
		return nil, err
	}
	return obj, nil
}

// CreateInstance creates a new instance for the binding, ignoring its scope.
// Scope managers call it when they need an instance.
func (c *Container) CreateInstance(b *Binding) (any, error) {
	r, err := c.recipe(b)
	if err != nil {
		return nil, err
	}
	if r.kind == KindAlias {
		return c.follow(r, nil)
	}
	return c.create(r)
}

// follow resolves the target of an alias. The alias stays on the
// construction stack meanwhile, so alias loops end in a cycle error.
func (c *Container) follow(r *recipe, point *InjectionPoint) (any, error) {
	done, err := c.enter(r.typ)
	defer done()
	if err != nil {
		return nil, err
	}
	return c.GetFor(r.alias, point)
}

func (c *Container) create(r *recipe) (obj any, err error) {
	done, err := c.enter(r.typ)
	defer done()
	if err != nil {
		return nil, err
	}

	defer c.logInstantiated(r.typ, r.scope, c.clock.Now(), &err)

	switch r.kind {
	case KindImplementation:
		if r.impl == nil {
			return nil, &ContextLookupError{Type: r.typ, Reason: r.abstract}
		}
		obj, err = c.construct(r.impl, r.resolvers, r.nested)
	case KindFactory:
		obj, err = c.callFactory(r.factory, r.factory.fn, r.resolvers, r.nested, r.typ)
	case KindFactoryAlias:
		var holder any
		if holder, err = c.GetFor(r.holder, &InjectionPoint{Type: r.typ}); err != nil {
			return nil, err
		}
		if holder == nil {
			return nil, &ContextLookupError{Type: r.typ, Reason: "factory holder " + TypeName(r.holder) + " is nil"}
		}
		fn := reflect.ValueOf(holder).MethodByName(r.method)
		if !fn.IsValid() {
			return nil, &ContextLookupError{Type: r.typ, Reason: fmt.Sprintf(
				"%T has no method %v", holder, r.method)}
		}
		obj, err = c.callFactory(r.factory, fn, r.resolvers, r.nested, r.typ)
	}
	if err != nil {
		return nil, err
	}

	if obj, err = c.initialize(obj, r.binding, r); err != nil {
		return nil, err
	}
	if err := c.injectSetters(obj, r.setters); err != nil {
		return nil, err
	}
	return obj, nil
}

func (c *Container) logInstantiated(t, scope reflect.Type, start time.Time, err *error) {
	ev := &kontextevent.Instantiated{
		TypeName: TypeName(t),
		Runtime:  c.clock.Since(start),
		Err:      *err,
	}
	if scope != nil {
		ev.Scope = TypeName(scope)
	}
	c.log.LogEvent(ev)
}

// construct allocates the struct and fills its injectable fields.
func (c *Container) construct(sp *structPlan, resolvers map[string]any, nested map[string]*callPlan) (any, error) {
	v := reflect.New(sp.elem)
	for _, p := range sp.params {
		fv, err := c.resolveParam(p, resolvers, nested, &InjectionPoint{Type: sp.typ, Param: p.name}, TypeName(sp.typ))
		if err != nil {
			return nil, err
		}
		v.Elem().FieldByIndex(p.index).Set(fv)
	}
	if sp.typ.Kind() == reflect.Ptr {
		return v.Interface(), nil
	}
	return v.Elem().Interface(), nil
}

// args populates the parameters of a call plan, after the lead arguments.
func (c *Container) args(p *callPlan, lead []reflect.Value, resolvers map[string]any, nested map[string]*callPlan, point reflect.Type) ([]reflect.Value, error) {
	args := append([]reflect.Value(nil), lead...)

	var in reflect.Value
	if p.in != nil {
		in = reflect.New(p.in).Elem()
	}
	for _, prm := range p.params {
		v, err := c.resolveParam(prm, resolvers, nested, &InjectionPoint{Type: point, Param: prm.name}, p.name)
		if err != nil {
			return nil, err
		}
		if p.in != nil {
			in.FieldByIndex(prm.index).Set(v)
			continue
		}
		args = append(args, v)
	}
	if p.in != nil {
		args = append(args, in)
	}
	return args, nil
}

// call invokes fn as described by p and returns its value result, if any.
func (c *Container) call(p *callPlan, fn reflect.Value, lead []reflect.Value, resolvers map[string]any, nested map[string]*callPlan, point reflect.Type) (reflect.Value, error) {
	args, err := c.args(p, lead, resolvers, nested, point)
	if err != nil {
		return reflect.Value{}, err
	}

	results := fn.Call(args)
	if p.hasErr {
		if err, _ := results[len(results)-1].Interface().(error); err != nil {
			return reflect.Value{}, err
		}
	}
	if p.out == nil {
		return reflect.Value{}, nil
	}
	return results[0], nil
}

func (c *Container) callFactory(p *callPlan, fn reflect.Value, resolvers map[string]any, nested map[string]*callPlan, t reflect.Type) (any, error) {
	v, err := c.call(p, fn, nil, resolvers, nested, t)
	if err != nil {
		return nil, err
	}
	obj := v.Interface()
	if obj != nil && !reflect.TypeOf(obj).AssignableTo(t) {
		return nil, &ContextLookupError{Type: t, Reason: fmt.Sprintf("%v returned %T", p.name, obj)}
	}
	return obj, nil
}

// resolveParam finds the value of one parameter: an explicit resolver, then
// the container, then the default of an optional parameter.
func (c *Container) resolveParam(p param, resolvers map[string]any, nested map[string]*callPlan, point *InjectionPoint, callable string) (reflect.Value, error) {
	if v, ok := resolvers[p.name]; ok {
		return c.resolverValue(p, v, nested[p.name], point, callable)
	}

	switch {
	case c.Has(p.typ):
	case p.optional:
		return p.defaultValue(), nil
	case p.typ.Kind() == reflect.Interface:
		return reflect.Value{}, &ParameterError{Param: p.name, Type: p.typ, Callable: callable,
			Reason: "interface has no binding"}
	case !classLike(p.typ):
		return reflect.Value{}, &ParameterError{Param: p.name, Type: p.typ, Callable: callable}
	}

	obj, err := c.GetFor(p.typ, point)
	if err != nil {
		return reflect.Value{}, err
	}
	return valueOf(obj, p.typ), nil
}

func (c *Container) resolverValue(p param, v any, nested *callPlan, point *InjectionPoint, callable string) (reflect.Value, error) {
	if ref, ok := v.(ParamRef); ok && p.typ != reflect.TypeOf(ref) {
		pv, ok := c.params[string(ref)]
		if !ok {
			return reflect.Value{}, &ParameterError{Param: p.name, Type: p.typ, Callable: callable,
				Reason: fmt.Sprintf("container parameter %q is not set", string(ref))}
		}
		v = pv
	}
	if v == nil {
		return reflect.Zero(p.typ), nil
	}

	rv := reflect.ValueOf(v)
	switch {
	case rv.Type().AssignableTo(p.typ):
		return rv, nil
	case rv.Kind() == reflect.Func:
		if nested == nil {
			np, err := newCallPlan(rv, rv.Type(), kontextreflect.FuncName(v), 0)
			if err != nil {
				return reflect.Value{}, err
			}
			nested = np
		}
		out, err := c.call(nested, rv, nil, nil, nil, point.Type)
		if err != nil {
			return reflect.Value{}, err
		}
		if !out.IsValid() {
			return reflect.Value{}, &ParameterError{Param: p.name, Type: p.typ, Callable: callable,
				Reason: fmt.Sprintf("resolver %v returns no value", nested.name)}
		}
		if out.Kind() == reflect.Interface && !out.Type().AssignableTo(p.typ) {
			if out.IsNil() {
				return reflect.Zero(p.typ), nil
			}
			out = out.Elem()
		}
		if out.Type().AssignableTo(p.typ) {
			return out, nil
		}
		return reflect.Value{}, &ParameterError{Param: p.name, Type: p.typ, Callable: callable,
			Reason: fmt.Sprintf("resolver %v produced %v", nested.name, out.Type())}
	case isScalar(rv.Kind()) && isScalar(p.typ.Kind()) && rv.Type().ConvertibleTo(p.typ):
		return rv.Convert(p.typ), nil
	}
	return reflect.Value{}, &ParameterError{Param: p.name, Type: p.typ, Callable: callable,
		Reason: fmt.Sprintf("resolver value of type %T is not assignable", v)}
}

func isScalar(k reflect.Kind) bool {
	switch k {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// valueOf converts obj into a value of type t, mapping nil to the zero
// value.
func valueOf(obj any, t reflect.Type) reflect.Value {
	if obj == nil {
		return reflect.Zero(t)
	}
	v := reflect.ValueOf(obj)
	if v.Type() != t && t.Kind() == reflect.Interface {
		iv := reflect.New(t).Elem()
		iv.Set(v)
		return iv
	}
	return v
}

// initialize runs the container-wide initializers, then the binding's
// initializers and decorators.
func (c *Container) initialize(obj any, b *Binding, r *recipe) (any, error) {
	for _, fn := range c.initializers {
		out, err := fn(obj, b)
		if err != nil {
			return nil, err
		}
		if out != nil {
			obj = out
		}
	}
	if r == nil {
		return obj, nil
	}

	for _, p := range r.initializers {
		var err error
		if obj, err = c.runInitializer(p, obj, b); err != nil {
			return nil, err
		}
	}
	for _, p := range r.decorators {
		var err error
		if obj, err = c.runInitializer(p, obj, b); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

func (c *Container) runInitializer(p *callPlan, obj any, b *Binding) (any, error) {
	first := p.fn.Type().In(0)
	if obj == nil {
		if !nilable(first.Kind()) {
			return nil, fmt.Errorf("%w: %v can't accept a nil %v",
				ErrInvalidArgument, p.name, TypeName(b.typ))
		}
	} else if !reflect.TypeOf(obj).AssignableTo(first) {
		return nil, fmt.Errorf("%w: %v can't accept %T", ErrInvalidArgument, p.name, obj)
	}

	out, err := c.call(p, p.fn, []reflect.Value{valueOf(obj, first)}, nil, nil, b.typ)
	if err != nil {
		return nil, err
	}
	if !out.IsValid() || isNil(out) {
		return obj, nil
	}
	repl := out.Interface()
	if !reflect.TypeOf(repl).AssignableTo(b.typ) {
		return nil, fmt.Errorf("%w: %v replaced %v with %T",
			ErrInvalidArgument, p.name, TypeName(b.typ), repl)
	}
	return repl, nil
}

func nilable(k reflect.Kind) bool {
	switch k {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return true
	}
	return false
}

func isNil(v reflect.Value) bool {
	return nilable(v.Kind()) && v.IsNil()
}

// setterMethods returns the names of the methods of t selected by the
// setter markers, in method order.
func setterMethods(t reflect.Type, markers []any) []string {
	var names []string
	for i := 0; i < t.NumMethod(); i++ {
		name := t.Method(i).Name
		for _, m := range markers {
			if setterSelected(name, m) {
				names = append(names, name)
				break
			}
		}
	}
	return names
}

func setterSelected(name string, marker any) bool {
	switch m := marker.(type) {
	case InjectMethods:
		return strings.HasPrefix(name, "Inject")
	case AllSetters:
		return strings.HasPrefix(name, "Set")
	case *SetterInjection:
		return m != nil && setterSelected(name, *m)
	case SetterInjection:
		if !strings.HasPrefix(name, "Set") {
			return false
		}
		return (len(m.Include) == 0 || matchAny(m.Include, name)) && !matchAny(m.Exclude, name)
	}
	return false
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := path.Match(p, name); ok {
			return true
		}
	}
	return false
}

// injectSetters calls the selected setters of obj. Setters taking types the
// container doesn't know are skipped.
func (c *Container) injectSetters(obj any, markers []any) error {
	if obj == nil || len(markers) == 0 {
		return nil
	}

	v := reflect.ValueOf(obj)
	for _, name := range c.setters(v.Type(), markers) {
		m := v.MethodByName(name)
		mt := m.Type()
		if mt.IsVariadic() {
			continue
		}

		resolvable := true
		for i := 0; i < mt.NumIn(); i++ {
			if !c.Has(mt.In(i)) {
				resolvable = false
				break
			}
		}
		if !resolvable {
			continue
		}

		args := make([]reflect.Value, mt.NumIn())
		for i := range args {
			dep, err := c.GetFor(mt.In(i), &InjectionPoint{Type: v.Type(), Param: name})
			if err != nil {
				return err
			}
			args[i] = valueOf(dep, mt.In(i))
		}
		results := m.Call(args)
		if n := len(results); n > 0 && results[n-1].Type() == _errorType && !results[n-1].IsNil() {
			return results[n-1].Interface().(error)
		}
	}
	return nil
}
