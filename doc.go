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

// Package kontext is a dependency injection container with scoped
// lifetimes.
//
// Bindings
//
// A Builder collects bindings. Each binding tells the container how to
// produce one type: by constructing an implementation, by calling a
// factory function, by calling a method of another resolved object, or by
// delegating to another binding.
//
//	b := kontext.NewBuilder()
//	kontext.Bind[Mailer](b).To((*SMTPMailer)(nil)).Scoped(kontext.Singleton{})
//	kontext.Bind[*Client](b).To(NewClient).Resolve("0", kontext.Param("endpoint"))
//	b.SetParameter("endpoint", "https://example.com")
//
// Applications usually group bindings into modules and install them in
// order; later modules may reconfigure bindings of earlier ones.
//
// Injection
//
// Implementations are structs. Fields tagged `inject:""` are populated from
// the container; `inject:"optional"` fields keep their `default:"..."`
// value, or the zero value, when the container can't produce them.
// Factories receive their parameters in order, or through a single struct
// embedding kontext.In whose fields carry `optional` and `default` tags.
//
// Scopes
//
// Dependent bindings, the default, produce a new instance per request.
// Singleton bindings produce one instance per container. ApplicationScoped
// bindings produce one instance per context bound to the container's
// ContextScope and are handed out as proxies:
//
//	scope, _ := c.ApplicationScope()
//	scope.BindContext(kontext.NewScopeContext())
//	defer scope.UnbindContext(true)
//
// Proxies are interfaces implemented by adapters generated with the
// kontextgen package.
//
// Compilation
//
// Builder.Compile validates the bindings once and returns a Plan. Plans
// build frozen containers that resolve without inspecting signatures, and
// feed kontextgen, which writes the generated resolution table and proxy
// adapters.
//
// Containers are not safe for concurrent use.
package kontext
