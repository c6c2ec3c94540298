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

// Package kontextgen writes the artifacts of compiled kontext containers:
// a resolution table describing every binding, and one proxy adapter per
// type handed out by a proxied scope.
//
// Artifacts are written below <Dir>/<Context> and regenerated only when
// they are stale: when the table is missing, when the kernel source file is
// newer than the table, or when the installed modules or registered scopes
// changed. Any staleness regenerates every artifact.
//
//	c := kontextgen.Compiler{
//		Dir:          "var/cache",
//		Context:      "prod",
//		KernelSource: "kernel.go",
//	}
//	res, err := c.Compile(builder)
//
// The generated package exports Configure, which attaches the adapters to a
// builder, and Build, which also compiles the builder, checks the plan
// against the generated table and builds a frozen container:
//
//	c, err := prod.Build(builder)
//
// Build fails with kontext.ErrStalePlan when the application's bindings
// drifted from the generated table.
package kontextgen
