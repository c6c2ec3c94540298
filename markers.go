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

import "reflect"

// Singleton marks a binding whose instance is created once per container.
type Singleton struct{}

// ApplicationScoped marks a binding whose instance lives as long as the
// context bound to the ApplicationScoped manager. Such bindings are handed
// out as proxies.
type ApplicationScoped struct{}

// InjectMethods enables setter injection for every method whose name starts
// with "Inject".
type InjectMethods struct{}

// AllSetters enables setter injection for every method whose name starts
// with "Set".
type AllSetters struct{}

// SetterInjection enables setter injection for "Set" methods matching the
// Include patterns and none of the Exclude patterns. Patterns use path.Match
// syntax against the method name. An empty Include matches every setter.
type SetterInjection struct {
	Include []string
	Exclude []string
}

// In may be embedded into a struct to mark it as a parameter object. A
// function whose only parameter is such a struct has its parameters named
// after the struct's fields.
//
//	type MailerParams struct {
//	  kontext.In
//
//	  Transport Transport
//	  Sender    string `optional:"true" default:"noreply@example.com"`
//	}
type In struct{ _ struct{} }

var _inType = reflect.TypeOf(In{})

// ParamRef refers to an entry of the container's parameter table. Pass one
// to Binding.Resolve to read the parameter when the object is created.
type ParamRef string

// Param returns a reference to the named container parameter.
func Param(name string) ParamRef {
	return ParamRef(name)
}

func embedsIn(t reflect.Type) bool {
	if t.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type == _inType {
			return true
		}
	}
	return false
}
