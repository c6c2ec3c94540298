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

// Package kontexttest provides utilities for testing code wired with
// kontext containers.
package kontexttest

import (
	"go.uber.org/kontext"
)

// TB is a subset of the standard library's testing.TB interface. It's
// satisfied by both *testing.T and *testing.B.
type TB interface {
	Logf(string, ...interface{})
	Errorf(string, ...interface{})
	FailNow()
}

// New builds a container from b, failing the test if the builder holds
// configuration errors. Container events are logged to t unless another
// logger is given through opts.
func New(t TB, b *kontext.Builder, opts ...kontext.Option) *kontext.Container {
	opts = append([]kontext.Option{kontext.WithLogger(NewTestLogger(t))}, opts...)
	c, err := b.Build(opts...)
	if err != nil {
		t.Errorf("container didn't build cleanly: %v", err)
		t.FailNow()
	}
	return c
}

// Compile compiles b and builds a frozen container from the plan, failing
// the test on error.
func Compile(t TB, b *kontext.Builder, opts ...kontext.Option) *kontext.Container {
	p, err := b.Compile()
	if err != nil {
		t.Errorf("container didn't compile cleanly: %v", err)
		t.FailNow()
		return nil
	}

	opts = append([]kontext.Option{kontext.WithLogger(NewTestLogger(t))}, opts...)
	c, err := p.Build(opts...)
	if err != nil {
		t.Errorf("compiled container didn't build cleanly: %v", err)
		t.FailNow()
	}
	return c
}

// Get resolves T from r, failing the test on error.
func Get[T any](t TB, r kontext.Resolver) T {
	v, err := kontext.Get[T](r)
	if err != nil {
		t.Errorf("can't resolve %v: %v", kontext.TypeName(kontext.TypeOf[T]()), err)
		t.FailNow()
	}
	return v
}

// Enter binds a fresh context to the application scope of c and returns a
// function that terminates it.
func Enter(t TB, c *kontext.Container) (leave func()) {
	scope, err := c.ApplicationScope()
	if err == nil {
		err = scope.BindContext(kontext.NewScopeContext())
	}
	if err != nil {
		t.Errorf("can't enter application scope: %v", err)
		t.FailNow()
		return func() {}
	}
	return func() {
		if err := scope.UnbindContext(true); err != nil {
			t.Errorf("can't leave application scope: %v", err)
		}
	}
}
