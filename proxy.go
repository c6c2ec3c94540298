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

// A Proxy stands in for the instance of a binding whose scope requires
// proxies. Proxy adapters implement the bound interface by forwarding every
// call to Instance.
//
// No instance exists until the proxy is first used. The instance is then
// obtained from the scope manager and kept until the manager's state
// changes.
type Proxy struct {
	binding   *Binding
	scope     ScopeManager
	container *Container

	cell lazyCell
}

type lazyCell struct {
	value      any
	generation uint64
	ok         bool
}

// generational is implemented by scope managers whose active instances
// change over time.
type generational interface {
	Generation() uint64
}

func newProxy(b *Binding, scope ScopeManager, c *Container) *Proxy {
	return &Proxy{binding: b, scope: scope, container: c}
}

// Binding returns the binding behind the proxy.
func (p *Proxy) Binding() *Binding { return p.binding }

// Scope returns the scope manager of the proxy.
func (p *Proxy) Scope() ScopeManager { return p.scope }

// Instance returns the real instance, activating it through the scope
// manager when needed.
func (p *Proxy) Instance() (any, error) {
	g, ok := p.scope.(generational)
	if ok && p.cell.ok && p.cell.generation == g.Generation() {
		return p.cell.value, nil
	}

	obj, err := p.scope.Activate(p)
	if err != nil {
		p.cell = lazyCell{}
		return nil, err
	}
	if ok {
		p.cell = lazyCell{value: obj, generation: g.Generation(), ok: true}
	}
	return obj, nil
}

// MustInstance is like Instance but panics on error. Generated adapters use
// it for methods that can't report errors.
func (p *Proxy) MustInstance() any {
	obj, err := p.Instance()
	if err != nil {
		panic(err)
	}
	return obj
}

// Create creates a new instance for the binding, ignoring its scope. Scope
// managers call it from Activate.
func (p *Proxy) Create() (any, error) {
	return p.container.CreateInstance(p.binding)
}
