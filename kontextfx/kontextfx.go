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

// Package kontextfx exposes the bindings of a kontext container to
// go.uber.org/dig containers and go.uber.org/fx applications.
//
// Every binding becomes a constructor of its bound type that resolves the
// type from the container. dig and fx call a constructor at most once, so
// dependent bindings behave like singletons on that side.
//
//	app := fx.New(
//		kontextfx.Module(c),
//		fx.Invoke(func(m Mailer) { ... }),
//	)
package kontextfx

import (
	"context"
	"reflect"

	"go.uber.org/dig"
	"go.uber.org/fx"
	"go.uber.org/kontext"
)

var _errorType = reflect.TypeOf((*error)(nil)).Elem()

// Constructors returns one constructor per binding of c, plus constructors
// for the container itself as *kontext.Container and kontext.Resolver.
func Constructors(c *kontext.Container) []any {
	ctors := []any{
		func() *kontext.Container { return c },
		func() kontext.Resolver { return c },
	}
	for _, b := range c.Bindings() {
		ctors = append(ctors, constructor(c, b.Type()))
	}
	return ctors
}

// constructor builds a func() (t, error) resolving t from c.
func constructor(c *kontext.Container, t reflect.Type) any {
	ft := reflect.FuncOf(nil, []reflect.Type{t, _errorType}, false)
	return reflect.MakeFunc(ft, func([]reflect.Value) []reflect.Value {
		obj, err := c.Get(t)
		if err != nil {
			return []reflect.Value{reflect.Zero(t), reflect.ValueOf(&err).Elem()}
		}
		return []reflect.Value{reflect.ValueOf(obj), reflect.Zero(_errorType)}
	}).Interface()
}

// Provide registers the constructors of c with dc.
func Provide(c *kontext.Container, dc *dig.Container) error {
	for _, ctor := range Constructors(c) {
		if err := dc.Provide(ctor); err != nil {
			return err
		}
	}
	return nil
}

// Module returns an fx.Option providing the bindings of c. The container's
// scopes are cleared when the application stops.
func Module(c *kontext.Container) fx.Option {
	return fx.Module("kontext",
		fx.Provide(Constructors(c)...),
		fx.Invoke(func(lc fx.Lifecycle) {
			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					c.Clear()
					return nil
				},
			})
		}),
	)
}
