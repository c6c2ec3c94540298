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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var yamlConfig1 = []byte(`
appid: keyvalue
desc: A simple keyvalue service
appowner: owner@service.com
modules:
  rpc:
    bind: :28941
`)

func TestYAMLSimple(t *testing.T) {
	t.Parallel()
	provider, err := NewYAMLProviderFromBytes(yamlConfig1)
	require.NoError(t, err)

	c := provider.Get("modules.rpc.bind")
	assert.True(t, c.HasValue())
	assert.Equal(t, ":28941", c.AsString())
	assert.Equal(t, "yaml", c.Source())
	assert.Equal(t, "modules.rpc.bind", c.Key())
}

func TestYAMLCaseInsensitive(t *testing.T) {
	t.Parallel()
	provider, err := NewYAMLProviderFromBytes(yamlConfig1)
	require.NoError(t, err)

	assert.Equal(t, ":28941", provider.Get("Modules.RPC.Bind").AsString())
}

func TestYAMLMissing(t *testing.T) {
	t.Parallel()
	provider, err := NewYAMLProviderFromBytes(yamlConfig1)
	require.NoError(t, err)

	v := provider.Get("modules.http.port")
	assert.False(t, v.HasValue())
	assert.Nil(t, v.Value())
	assert.Equal(t, Invalid, v.Type)
}

func TestYAMLSequenceIndex(t *testing.T) {
	t.Parallel()
	provider, err := NewYAMLProviderFromBytes([]byte(`
hosts:
  - name: a
    port: 1
  - name: b
    port: 2
`))
	require.NoError(t, err)

	assert.Equal(t, "b", provider.Get("hosts.1.name").AsString())
	assert.Equal(t, 1, provider.Get("hosts.0.port").AsInt())
	assert.False(t, provider.Get("hosts.2.name").HasValue())
	assert.False(t, provider.Get("hosts.x").HasValue())
	assert.Equal(t, Slice, provider.Get("hosts").Type)
}

func TestYAMLMerge(t *testing.T) {
	t.Parallel()

	base := []byte(`
database:
  host: localhost
  port: 5432
  options: [a, b]
name: base
`)
	override := []byte(`
database:
  port: 6432
  options: [c]
name: override
`)

	provider, err := NewYAMLProviderFromBytes(base, override)
	require.NoError(t, err)

	assert.Equal(t, "localhost", provider.Get("database.host").AsString())
	assert.Equal(t, 6432, provider.Get("database.port").AsInt())
	assert.Equal(t, []interface{}{"c"}, provider.Get("database.options").Value())
	assert.Equal(t, "override", provider.Get("name").AsString())
}

func TestYAMLMergeConflicts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		base     string
		override string
		wantErr  string
	}{
		{
			name:     "scalar over mapping",
			base:     "database:\n  host: localhost\n",
			override: "database: sqlite\n",
			wantErr:  `can't merge "database": mapping conflicts with scalar`,
		},
		{
			name:     "sequence over scalar",
			base:     "a:\n  b: 1\n",
			override: "a:\n  b: [1, 2]\n",
			wantErr:  `can't merge "a.b": scalar conflicts with sequence`,
		},
		{
			name:     "mapping over sequence",
			base:     "hosts: [a]\n",
			override: "hosts:\n  a: 1\n",
			wantErr:  `can't merge "hosts": sequence conflicts with mapping`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewYAMLProviderFromBytes([]byte(tt.base), []byte(tt.override))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestYAMLNullOverride(t *testing.T) {
	t.Parallel()

	provider, err := NewYAMLProviderFromBytes([]byte("a:\n  b: 1\n"), []byte("a: ~\n"))
	require.NoError(t, err)

	v := provider.Get("a")
	assert.True(t, v.HasValue())
	assert.Nil(t, v.Value())
}

func TestYAMLInvalid(t *testing.T) {
	t.Parallel()

	_, err := NewYAMLProviderFromBytes([]byte("a: [b"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to decode source 0")
}

func TestYAMLRoot(t *testing.T) {
	t.Parallel()
	provider, err := NewYAMLProviderFromBytes(yamlConfig1)
	require.NoError(t, err)

	root := provider.Get(Root)
	assert.True(t, root.HasValue())
	assert.Equal(t, Dictionary, root.Type)
	assert.Equal(t, "keyvalue", root.Get("appid").AsString())
}
