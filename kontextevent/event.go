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

package kontextevent

import "time"

// Event defines an event emitted by kontext.
type Event interface {
	event() // Only kontext can implement this interface.
}

// Passing events by type to make Event hashable in the future.
func (*Bound) event()             {}
func (*ScopeRegistered) event()   {}
func (*Instantiated) event()      {}
func (*CycleDetected) event()     {}
func (*ScopeEntered) event()      {}
func (*ScopeLeft) event()         {}
func (*ScopeCleared) event()      {}
func (*ProxyActivated) event()    {}
func (*ContainerCompiled) event() {}
func (*ProxyGenerated) event()    {}
func (*ConfigLoaded) event()      {}

// Bound is emitted when a container is built, once per registered binding.
type Bound struct {
	// TypeName is the bound type.
	TypeName string

	// Kind is the creation strategy: "implementation", "factory",
	// "factory alias" or "alias".
	Kind string

	// Scope names the scope marker, or is empty for dependent bindings.
	Scope string

	// Markers lists the type names of the markers attached to the binding.
	Markers []string

	// Caller is the function that declared the binding.
	Caller string

	// Err is non-nil if the binding was rejected.
	Err error
}

// ScopeRegistered is emitted when a scope manager is attached to a
// container.
type ScopeRegistered struct {
	Scope string
	Err   error
}

// Instantiated is emitted after the container created an object, whether it
// succeeded or not.
type Instantiated struct {
	TypeName string
	Scope    string
	Runtime  time.Duration

	// Err is the error that aborted construction, if any.
	Err error
}

// CycleDetected is emitted when constructing a type requires an instance of
// itself.
type CycleDetected struct {
	// Chain lists the types under construction, outermost first, ending with
	// the type that closed the cycle.
	Chain []string
}

// ScopeEntered is emitted when a context is bound to a context scope.
type ScopeEntered struct {
	Scope     string
	ContextID string

	// Resumed is true if the context had been bound before and its
	// instances were preserved.
	Resumed bool
}

// ScopeLeft is emitted when a context is unbound from a context scope.
type ScopeLeft struct {
	Scope      string
	ContextID  string
	Terminated bool
}

// ScopeCleared is emitted when a scope manager drops all its instances.
type ScopeCleared struct {
	Scope string
}

// ProxyActivated is emitted when a scoped proxy creates its real instance.
type ProxyActivated struct {
	TypeName  string
	Scope     string
	ContextID string
	Err       error
}

// ContainerCompiled is emitted after the compiler checked or regenerated a
// container artifact.
type ContainerCompiled struct {
	Context string
	Path    string

	// Reason explains why the artifact was regenerated. It is empty when the
	// cached artifact was fresh.
	Reason string
	Err    error
}

// ProxyGenerated is emitted when a proxy adapter source file is written.
type ProxyGenerated struct {
	TypeName string
	Path     string
	Err      error
}

// ConfigLoaded is emitted after configuration files were merged.
type ConfigLoaded struct {
	Context string
	Files   []string
	Err     error
}
