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

// Package config provides the configuration a kontext container hands to
// the objects it builds.
//
// Configuration lives in YAML files. Load merges every file of a
// configuration directory, then the files of a context-specific
// subdirectory on top of them:
//
//	config/
//	  base.yaml
//	  logging.yaml
//	  production/
//	    base.yaml
//
//	p, err := config.Load("config", "production")
//	dsn := p.Get("database.dsn").AsString()
//
// Mappings merge recursively. Scalars and sequences are replaced by later
// sources. A key holding a mapping in one file and a scalar in another is
// an error.
//
// A Provider can be narrowed to a section with NewScopedProvider; the
// container does this when it injects configuration into a type that has a
// section named after it.
package config
