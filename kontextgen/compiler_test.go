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

package kontextgen_test

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/kontext"
	"go.uber.org/kontext/kontextevent"
	"go.uber.org/kontext/kontextgen"
	"go.uber.org/kontext/kontexttest"
)

// Store is handed out through the application scope.
type Store interface {
	Load(key string) ([]byte, error)
	Keys(prefix string, limit ...int) []string
	Close()
}

type store interface {
	Close()
}

type memoryStore struct{ data map[string][]byte }

func (s *memoryStore) Load(key string) ([]byte, error) { return s.data[key], nil }

func (s *memoryStore) Keys(string, ...int) []string { return nil }

func (s *memoryStore) Close() {}

type clock struct{}

type requestScoped struct{}

func storeModule(b *kontext.Builder) {
	kontext.Bind[Store](b).
		To((*memoryStore)(nil)).
		Scoped(kontext.ApplicationScoped{})
	kontext.Bind[*clock](b).Scoped(kontext.Singleton{})
}

func clockModule(b *kontext.Builder) {
	kontext.Bind[*clock](b)
}

func newBuilder(mods ...func(*kontext.Builder)) *kontext.Builder {
	b := kontext.NewBuilder()
	for _, m := range mods {
		b.Install(kontext.ModuleFunc(m))
	}
	return b
}

func read(t *testing.T, path string) string {
	t.Helper()
	src, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(src)
}

func TestCompile(t *testing.T) {
	spy := new(kontexttest.Spy)
	c := kontextgen.Compiler{
		Dir:     t.TempDir(),
		Context: "prod",
		Logger:  spy,
	}

	res, err := c.Compile(newBuilder(storeModule))
	require.NoError(t, err)
	assert.True(t, res.Regenerated)
	assert.Equal(t, "container is missing", res.Reason)
	assert.Equal(t, filepath.Join(c.Dir, "prod", "container.go"), res.Path)

	proxyFile := filepath.Join(c.Dir, "prod", kontextgen.ProxyFileName(kontext.TypeOf[Store]()))
	assert.Equal(t, map[string]string{
		"go.uber.org/kontext/kontextgen_test.Store": proxyFile,
	}, res.Proxies)
	assert.Equal(t, []string{"ProxyGenerated", "ContainerCompiled"}, spy.EventTypes())

	t.Run("table", func(t *testing.T) {
		src := read(t, res.Path)
		assert.True(t, strings.HasPrefix(src, "// Code generated by kontextgen. DO NOT EDIT.\n"))
		assert.Contains(t, src, "package prod\n")
		assert.Contains(t, src, `"go.uber.org/kontext/kontextgen_test.Store"`)
		assert.Contains(t, src, "kontext.KindImplementation")
		assert.Contains(t, src, `"*go.uber.org/kontext/kontextgen_test.memoryStore"`)
		assert.Contains(t, src, "kontext.Bind[kontextgen_test.Store](b).ProxiedBy(NewStoreProxy)")
		assert.Contains(t, src, "func Build(b *kontext.Builder, opts ...kontext.Option) (*kontext.Container, error) {")
		assert.Contains(t, src, "if err := p.Verify(Entries); err != nil {")
	})

	t.Run("entries", func(t *testing.T) {
		p, err := newBuilder(storeModule).Compile()
		require.NoError(t, err)

		f, err := parser.ParseFile(token.NewFileSet(), res.Path, nil, 0)
		require.NoError(t, err)

		var entries []ast.Expr
		ast.Inspect(f, func(n ast.Node) bool {
			vs, ok := n.(*ast.ValueSpec)
			if !ok || vs.Names[0].Name != "Entries" {
				return true
			}
			entries = vs.Values[0].(*ast.CompositeLit).Elts
			return false
		})
		assert.Len(t, entries, len(p.Entries()), "every binding must be generated")
	})

	t.Run("proxy", func(t *testing.T) {
		src := read(t, proxyFile)
		for _, want := range []string{
			`"go.uber.org/kontext/kontextgen_test"`,
			"type storeProxy struct{ p *kontext.Proxy }",
			"func NewStoreProxy(p *kontext.Proxy) kontextgen_test.Store {",
			"func (x storeProxy) Load(a0 string) (r0 []byte, err error) {",
			"return obj.(kontextgen_test.Store).Load(a0)",
			"func (x storeProxy) Keys(a0 string, a1 ...int) (r0 []string) {",
			"return x.p.MustInstance().(kontextgen_test.Store).Keys(a0, a1...)",
			"x.p.MustInstance().(kontextgen_test.Store).Close()",
		} {
			assert.Contains(t, src, want)
		}
	})

	t.Run("header", func(t *testing.T) {
		p, err := newBuilder(storeModule).Compile()
		require.NoError(t, err)

		h, err := kontextgen.ReadHeader(res.Path)
		require.NoError(t, err)
		assert.Equal(t, kontextgen.Header{
			ModulesHash: p.ModulesHash(),
			ScopesHash:  p.ScopesHash(),
		}, h)
	})
}

func TestCompileCaching(t *testing.T) {
	dir := t.TempDir()
	kernel := filepath.Join(dir, "kernel.go")
	require.NoError(t, os.WriteFile(kernel, []byte("package app\n"), 0o644))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(kernel, past, past))

	c := kontextgen.Compiler{
		Dir:          filepath.Join(dir, "cache"),
		Context:      "dev",
		KernelSource: kernel,
	}
	compile := func(b *kontext.Builder) *kontextgen.Result {
		res, err := c.Compile(b)
		require.NoError(t, err)
		return res
	}

	res := compile(newBuilder(storeModule))
	require.True(t, res.Regenerated)

	res = compile(newBuilder(storeModule))
	assert.False(t, res.Regenerated, "fresh artifacts must be reused")
	assert.Empty(t, res.Reason)

	res = compile(newBuilder(storeModule, clockModule))
	assert.True(t, res.Regenerated)
	assert.Equal(t, "modules changed", res.Reason)

	scoped := newBuilder(storeModule, clockModule)
	require.NoError(t, scoped.RegisterScope(requestScoped{}, func() kontext.ScopeManager {
		return kontext.NewContextScope(requestScoped{})
	}))
	res = compile(scoped)
	assert.True(t, res.Regenerated)
	assert.Equal(t, "scopes changed", res.Reason)

	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(kernel, future, future))
	res = compile(newBuilder(storeModule, clockModule))
	assert.True(t, res.Regenerated)
	assert.Equal(t, "kernel source is newer", res.Reason)
}

func TestCompileRemovesStaleProxies(t *testing.T) {
	c := kontextgen.Compiler{Dir: t.TempDir(), Context: "test"}

	_, err := c.Compile(newBuilder(storeModule))
	require.NoError(t, err)
	proxyFile := filepath.Join(c.Dir, "test", kontextgen.ProxyFileName(kontext.TypeOf[Store]()))
	require.FileExists(t, proxyFile)

	res, err := c.Compile(newBuilder(clockModule))
	require.NoError(t, err)
	assert.True(t, res.Regenerated)
	assert.Empty(t, res.Proxies)
	assert.NoFileExists(t, proxyFile)
	assert.NotContains(t, read(t, res.Path), "ProxiedBy")
}

func TestCompileUnreadableHeader(t *testing.T) {
	c := kontextgen.Compiler{Dir: t.TempDir(), Context: "test"}
	require.NoError(t, os.MkdirAll(filepath.Join(c.Dir, "test"), 0o755))
	require.NoError(t, os.WriteFile(c.Path(), []byte("package test\n"), 0o644))

	res, err := c.Compile(newBuilder(storeModule))
	require.NoError(t, err)
	assert.Equal(t, "header is unreadable", res.Reason)

	_, err = kontextgen.ReadHeader(filepath.Join(c.Dir, "missing.go"))
	assert.Error(t, err)
}

func TestCompileErrors(t *testing.T) {
	t.Run("colliding proxy files", func(t *testing.T) {
		b := newBuilder(storeModule)
		kontext.Bind[store](b).To((*memoryStore)(nil)).Scoped(kontext.ApplicationScoped{})

		spy := new(kontexttest.Spy)
		c := kontextgen.Compiler{Dir: t.TempDir(), Context: "test", Logger: spy}
		_, err := c.Compile(b)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "collide")
		assert.NoFileExists(t, c.Path())

		events := spy.Events()
		require.Len(t, events, 1)
		compiled, ok := events[0].(*kontextevent.ContainerCompiled)
		require.True(t, ok)
		assert.Error(t, compiled.Err)
	})

	t.Run("unexported proxied type", func(t *testing.T) {
		b := kontext.NewBuilder()
		kontext.Bind[store](b).To((*memoryStore)(nil)).Scoped(kontext.ApplicationScoped{})

		c := kontextgen.Compiler{Dir: t.TempDir(), Context: "test"}
		_, err := c.Compile(b)
		assert.ErrorIs(t, err, kontext.ErrProxyImpossible)
	})

	t.Run("invalid builder", func(t *testing.T) {
		b := kontext.NewBuilder()
		kontext.Bind[Store](b).To(nil)

		c := kontextgen.Compiler{Dir: t.TempDir(), Context: "test"}
		_, err := c.Compile(b)
		assert.Error(t, err)
		assert.NoFileExists(t, c.Path())
	})
}

func TestPurge(t *testing.T) {
	c := kontextgen.Compiler{Dir: t.TempDir(), Context: "test"}
	_, err := c.Compile(newBuilder(storeModule))
	require.NoError(t, err)

	keep := filepath.Join(c.Dir, "test", "README")
	require.NoError(t, os.WriteFile(keep, nil, 0o644))

	require.NoError(t, c.Purge())
	assert.NoFileExists(t, c.Path())
	assert.FileExists(t, keep)

	matches, err := filepath.Glob(filepath.Join(c.Dir, "test", "proxy_*.go"))
	require.NoError(t, err)
	assert.Empty(t, matches)

	assert.NoError(t, c.Purge(), "purging twice must succeed")
}

func TestProxyFileName(t *testing.T) {
	name := kontextgen.ProxyFileName(kontext.TypeOf[Store]())
	assert.Regexp(t, `^proxy_[0-9a-f]{64}\.go$`, name)
	assert.Equal(t, name, kontextgen.ProxyFileName(kontext.TypeOf[store]()))
	assert.NotEqual(t, name, kontextgen.ProxyFileName(kontext.TypeOf[*clock]()))
}

func TestPackageDefault(t *testing.T) {
	c := kontextgen.Compiler{Dir: t.TempDir(), Context: "2024-Staging"}
	res, err := c.Compile(newBuilder(clockModule))
	require.NoError(t, err)
	assert.Contains(t, read(t, res.Path), "package container2024staging\n")
}
