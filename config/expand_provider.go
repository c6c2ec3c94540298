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

package config

import "os"

type expandProvider struct {
	p       Provider
	mapping func(string) string
}

// NewExpandProvider returns a config provider that uses a mapping function
// to expand ${var} or $var references in the string values returned by the
// provider p, including strings nested in mappings and sequences.
func NewExpandProvider(p Provider, mapping func(string) string) Provider {
	return &expandProvider{p: p, mapping: mapping}
}

// Name returns expand
func (e *expandProvider) Name() string {
	return "expand"
}

// Get returns the value that has ${var} or $var replaced based on the mapping function.
func (e *expandProvider) Get(key string) Value {
	v := e.p.Get(key)
	if !v.HasValue() {
		return NewValue(e, key, nil, false)
	}

	return NewValue(e, key, e.expand(v.Value()), true)
}

func (e *expandProvider) expand(v interface{}) interface{} {
	switch t := v.(type) {
	case string:
		return os.Expand(t, e.mapping)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, child := range t {
			out[k] = e.expand(child)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, child := range t {
			out[i] = e.expand(child)
		}
		return out
	default:
		return v
	}
}
