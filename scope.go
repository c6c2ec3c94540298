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

	"go.uber.org/kontext/kontextevent"
)

// A ScopeManager controls the lifetime of the instances of one scope.
//
// Managers that don't require proxies hand out instances directly through
// Lookup. Managers that require proxies hand out a proxy per bound type and
// create the real instance in Activate.
type ScopeManager interface {
	// Marker returns the scope marker type the manager serves.
	Marker() reflect.Type

	// Correlate attaches the manager to its container. It is called once
	// when the container is built.
	Correlate(c *Container)

	RequiresProxy() bool

	// Lookup returns the instance of b, calling create when the scope holds
	// none.
	Lookup(b *Binding, create func() (any, error)) (any, error)

	// Activate returns the instance behind a proxy, creating it when the
	// scope holds none.
	Activate(p *Proxy) (any, error)

	// Clear drops every instance held by the manager.
	Clear()
}

// scopeBase holds what every scope manager needs.
type scopeBase struct {
	marker    reflect.Type
	container *Container
}

func (s *scopeBase) Marker() reflect.Type { return s.marker }

func (s *scopeBase) Correlate(c *Container) { s.container = c }

func (s *scopeBase) log() kontextevent.Logger {
	if s.container == nil {
		return kontextevent.NopLogger
	}
	return s.container.log
}

// SingletonScope creates one instance per bound type.
type SingletonScope struct {
	scopeBase

	instances map[reflect.Type]any
}

var _ ScopeManager = (*SingletonScope)(nil)

// NewSingletonScope returns the manager of the Singleton scope.
func NewSingletonScope() ScopeManager {
	return &SingletonScope{
		scopeBase: scopeBase{marker: reflect.TypeOf(Singleton{})},
		instances: make(map[reflect.Type]any),
	}
}

// RequiresProxy returns false: singletons are handed out directly.
func (s *SingletonScope) RequiresProxy() bool { return false }

// Lookup returns the instance of b, creating it on first use. Failed
// creations are not remembered.
func (s *SingletonScope) Lookup(b *Binding, create func() (any, error)) (any, error) {
	if obj, ok := s.instances[b.Type()]; ok {
		return obj, nil
	}
	obj, err := create()
	if err != nil {
		return nil, err
	}
	s.instances[b.Type()] = obj
	return obj, nil
}

// Activate fails: singletons have no proxies.
func (s *SingletonScope) Activate(p *Proxy) (any, error) {
	return nil, fmt.Errorf("%w: %v doesn't use proxies", ErrProxyImpossible, TypeName(s.marker))
}

// Clear drops all singletons.
func (s *SingletonScope) Clear() {
	s.instances = make(map[reflect.Type]any)
	s.log().LogEvent(&kontextevent.ScopeCleared{Scope: TypeName(s.marker)})
}
