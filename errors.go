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
	"strings"
)

var (
	// ErrInvalidArgument is returned when a binding or instance is
	// registered for a type the container owns, or with a value of the
	// wrong type.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrTypeNotFound is returned when a type can't be identified.
	ErrTypeNotFound = errors.New("type not found")

	// ErrDuplicateScope is returned when two scope managers are registered
	// for the same marker.
	ErrDuplicateScope = errors.New("duplicate scope")

	// ErrProxyImpossible is returned at build time when a binding needs a
	// scoped proxy that can't exist.
	ErrProxyImpossible = errors.New("proxy generation impossible")

	// ErrFrozen is returned when a compiled container is asked to change
	// its registry.
	ErrFrozen = errors.New("container is compiled and can't be modified")

	// ErrStalePlan is returned when a plan no longer matches the entries
	// generated from it.
	ErrStalePlan = errors.New("plan doesn't match the generated container")

	// ErrScopeNotCorrelated is returned when a scope is used before it was
	// attached to a container.
	ErrScopeNotCorrelated = errors.New("scope is not correlated with a container")
)

// ScopeNotFoundError is returned when a binding refers to a scope that no
// manager was registered for.
type ScopeNotFoundError struct {
	Scope reflect.Type
}

func (e *ScopeNotFoundError) Error() string {
	return fmt.Sprintf("scope %v not found", TypeName(e.Scope))
}

// ScopeNotActiveError is returned when a scoped proxy is accessed while
// its scope has no bound context.
type ScopeNotActiveError struct {
	Scope reflect.Type

	// Type is the bound type behind the proxy, if known.
	Type reflect.Type
}

func (e *ScopeNotActiveError) Error() string {
	if e.Type == nil {
		return fmt.Sprintf("scope %v is not active", TypeName(e.Scope))
	}
	return fmt.Sprintf("scope %v is not active: can't activate %v",
		TypeName(e.Scope), TypeName(e.Type))
}

// ContextLookupError is returned when the container can't construct a type
// that has no binding, such as an interface.
type ContextLookupError struct {
	Type   reflect.Type
	Reason string
}

func (e *ContextLookupError) Error() string {
	return fmt.Sprintf("can't create %v: %v", TypeName(e.Type), e.Reason)
}

// ParameterError is returned when a parameter has no resolver, can't be
// looked up by type and has no default.
type ParameterError struct {
	// Param is the field name, the In struct field name or the index of the
	// function parameter.
	Param string

	// Type is the declared type of the parameter.
	Type reflect.Type

	// Callable names the function or type being populated.
	Callable string

	Reason string
}

func (e *ParameterError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "no resolver, binding or default"
	}
	return fmt.Sprintf("can't populate parameter %q (%v) of %v: %v",
		e.Param, TypeName(e.Type), e.Callable, reason)
}

// CyclicDependencyError is returned when constructing a type requires an
// instance of itself.
type CyclicDependencyError struct {
	// Chain lists the types under construction, outermost first, ending
	// with the type that was requested again.
	Chain []reflect.Type
}

func (e *CyclicDependencyError) Error() string {
	return "cyclic dependency: " + strings.Join(e.names(), " -> ")
}

func (e *CyclicDependencyError) names() []string {
	names := make([]string, len(e.Chain))
	for i, t := range e.Chain {
		names[i] = TypeName(t)
	}
	return names
}
