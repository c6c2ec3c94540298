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

	"github.com/google/uuid"
	"go.uber.org/kontext/kontextevent"
)

// ScopeContext is a context object with a unique identity. Any comparable
// value can be bound to a ContextScope; ScopeContext is a convenient one.
type ScopeContext struct {
	id uuid.UUID
}

// NewScopeContext returns a context with a random identity.
func NewScopeContext() *ScopeContext {
	return &ScopeContext{id: uuid.New()}
}

// ID returns the identity of the context.
func (c *ScopeContext) ID() string { return c.id.String() }

func (c *ScopeContext) String() string { return "context " + c.ID() }

// instanceTable holds the instances activated through proxies.
type instanceTable map[*Proxy]any

// ContextScope keeps one table of instances per bound context. Exactly one
// context is active at a time; binding another context stacks the current
// one, and unbinding re-activates it.
//
// A ContextScope starts out uncorrelated. Once correlated with its
// container it is inactive until a context is bound.
type ContextScope struct {
	scopeBase

	tables map[any]instanceTable

	active    any
	hasActive bool
	stack     []any

	generation uint64
}

var _ ScopeManager = (*ContextScope)(nil)

// NewContextScope returns a context scope for the given marker.
func NewContextScope(marker any) *ContextScope {
	mt, ok := marker.(reflect.Type)
	if !ok {
		mt = reflect.TypeOf(marker)
	}
	return &ContextScope{
		scopeBase: scopeBase{marker: mt},
		tables:    make(map[any]instanceTable),
	}
}

// RequiresProxy returns true: context-scoped instances are always reached
// through proxies.
func (s *ContextScope) RequiresProxy() bool { return true }

// Lookup fails: context-scoped bindings must be proxied.
func (s *ContextScope) Lookup(*Binding, func() (any, error)) (any, error) {
	return nil, fmt.Errorf("%w: %v instances must be reached through a proxy",
		ErrProxyImpossible, TypeName(s.marker))
}

// Active reports whether a context is bound.
func (s *ContextScope) Active() bool { return s.hasActive }

// Context returns the bound context, if any.
func (s *ContextScope) Context() (any, bool) { return s.active, s.hasActive }

// Generation changes whenever the active instance table may have changed.
func (s *ContextScope) Generation() uint64 { return s.generation }

// BindContext activates ctx, resuming its instances if it was bound and
// unbound without termination before. A context already bound is stacked
// and re-activated by UnbindContext.
func (s *ContextScope) BindContext(ctx any) error {
	switch {
	case s.container == nil:
		return ErrScopeNotCorrelated
	case ctx == nil:
		return fmt.Errorf("%w: nil context", ErrInvalidArgument)
	case !reflect.TypeOf(ctx).Comparable():
		return fmt.Errorf("%w: context of type %T is not comparable", ErrInvalidArgument, ctx)
	}

	if s.hasActive {
		s.stack = append(s.stack, s.active)
	}
	_, resumed := s.tables[ctx]
	if !resumed {
		s.tables[ctx] = make(instanceTable)
	}
	s.active, s.hasActive = ctx, true
	s.generation++

	s.log().LogEvent(&kontextevent.ScopeEntered{
		Scope:     TypeName(s.marker),
		ContextID: contextID(ctx),
		Resumed:   resumed,
	})
	return nil
}

// UnbindContext deactivates the bound context. With terminate its
// instances are discarded, otherwise they are kept for the next time the
// context is bound. The previously bound context, if any, becomes active
// again.
func (s *ContextScope) UnbindContext(terminate bool) error {
	if !s.hasActive {
		return &ScopeNotActiveError{Scope: s.marker}
	}

	ctx := s.active
	if terminate {
		delete(s.tables, ctx)
	}
	if n := len(s.stack); n > 0 {
		s.active, s.stack = s.stack[n-1], s.stack[:n-1]
		// The context may have been bound again above itself and
		// terminated there.
		if _, ok := s.tables[s.active]; !ok {
			s.tables[s.active] = make(instanceTable)
		}
	} else {
		s.active, s.hasActive = nil, false
	}
	s.generation++

	s.log().LogEvent(&kontextevent.ScopeLeft{
		Scope:      TypeName(s.marker),
		ContextID:  contextID(ctx),
		Terminated: terminate,
	})
	return nil
}

// Activate returns the instance behind p in the active context.
func (s *ContextScope) Activate(p *Proxy) (obj any, err error) {
	if !s.hasActive {
		return nil, &ScopeNotActiveError{Scope: s.marker, Type: p.Binding().Type()}
	}

	table := s.tables[s.active]
	if obj, ok := table[p]; ok {
		return obj, nil
	}

	defer func() {
		s.log().LogEvent(&kontextevent.ProxyActivated{
			TypeName:  TypeName(p.Binding().Type()),
			Scope:     TypeName(s.marker),
			ContextID: contextID(s.active),
			Err:       err,
		})
	}()

	obj, err = p.Create()
	if err != nil {
		return nil, err
	}
	// Creating the instance may have switched contexts.
	if s.hasActive {
		t, ok := s.tables[s.active]
		if !ok {
			t = make(instanceTable)
			s.tables[s.active] = t
		}
		t[p] = obj
	}
	return obj, nil
}

// Clear drops the instances of every context.
func (s *ContextScope) Clear() {
	for ctx := range s.tables {
		s.tables[ctx] = make(instanceTable)
	}
	s.generation++
	s.log().LogEvent(&kontextevent.ScopeCleared{Scope: TypeName(s.marker)})
}

func contextID(ctx any) string {
	switch c := ctx.(type) {
	case interface{ ID() string }:
		return c.ID()
	case fmt.Stringer:
		return c.String()
	}
	return fmt.Sprintf("%v", ctx)
}
