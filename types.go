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
	"reflect"

	"go.uber.org/kontext/config"
)

// TypeOf returns the reflect.Type of T. It works for interface types, which
// reflect.TypeOf can't name from a value.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// TypeName returns the package-qualified name of t, for example
// "*go.uber.org/kontext/example.Mailer". Unnamed composite types use
// reflect's notation.
func TypeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.Kind() == reflect.Ptr && t.Name() == "" {
		return "*" + TypeName(t.Elem())
	}
	if t.PkgPath() == "" || t.Name() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// An InjectionPoint describes where a dependency is being injected.
type InjectionPoint struct {
	// Type is the type under construction.
	Type reflect.Type

	// Param is the name of the field or parameter being populated.
	Param string
}

// Resolver is the view of a container that objects may depend on to look up
// other objects at run time. It is always provided by the container itself
// and can't be bound.
type Resolver interface {
	Get(t reflect.Type) (any, error)
	Has(t reflect.Type) bool
	CreateObject(t reflect.Type, resolvers map[string]any, setterMarkers ...any) (any, error)
}

// ExposedResolver extends Resolver with access to the registry, for
// framework code that wires objects in bulk.
type ExposedResolver interface {
	Resolver

	Bindings() []*Binding
	EachMarked(marker reflect.Type, fn func(marker any, b *Binding) error) error
	Parameter(name string) (any, bool)
}

// ScopedResolver extends Resolver with access to the scope managers.
type ScopedResolver interface {
	Resolver

	Scope(marker any) (ScopeManager, error)
}

var (
	_configType   = TypeOf[config.Provider]()
	_resolverType = TypeOf[Resolver]()
	_exposedType  = TypeOf[ExposedResolver]()
	_scopedType   = TypeOf[ScopedResolver]()
	_proxyPtrType = reflect.TypeOf((*Proxy)(nil))
	_errorType    = TypeOf[error]()
)

// forbidden reports whether t is one of the types the container provides
// itself.
func forbidden(t reflect.Type) bool {
	switch t {
	case _configType, _resolverType, _exposedType, _scopedType:
		return true
	}
	return false
}

// classLike reports whether values of t can be obtained from the container
// without explicit configuration: interfaces may be bound, structs and
// pointers to structs can be constructed.
func classLike(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Struct:
		return true
	case reflect.Ptr:
		return t.Elem().Kind() == reflect.Struct
	}
	return false
}

func structElem(t reflect.Type) (reflect.Type, bool) {
	switch {
	case t.Kind() == reflect.Struct:
		return t, true
	case t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct:
		return t.Elem(), true
	}
	return nil, false
}

// sectionName returns the configuration section named after t.
func sectionName(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() == "" {
		return ""
	}
	return t.String()
}
