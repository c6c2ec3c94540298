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
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/kontext"
	"go.uber.org/kontext/kontextgen"
)

func TestStatus(t *testing.T) {
	dir := t.TempDir()
	kernel := filepath.Join(dir, "kernel.go")
	require.NoError(t, os.WriteFile(kernel, nil, 0o644))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(kernel, past, past))

	c := kontextgen.Compiler{Dir: dir, Context: "prod", KernelSource: kernel}

	_, err := c.Status()
	assert.ErrorIs(t, err, fs.ErrNotExist)

	b := newBuilder(storeModule)
	p, err := b.Compile()
	require.NoError(t, err)
	_, err = c.CompilePlan(p)
	require.NoError(t, err)

	s, err := c.Status()
	require.NoError(t, err)
	assert.Equal(t, p.ModulesHash(), s.Header.ModulesHash)
	assert.Equal(t, []string{kontextgen.ProxyFileName(kontext.TypeOf[Store]())}, s.Proxies)
	assert.False(t, s.Outdated)

	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(kernel, future, future))
	s, err = c.Status()
	require.NoError(t, err)
	assert.True(t, s.Outdated)
}

func TestContexts(t *testing.T) {
	dir := t.TempDir()

	contexts, err := kontextgen.Contexts(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, contexts)

	for _, ctx := range []string{"prod", "dev"} {
		c := kontextgen.Compiler{Dir: dir, Context: ctx}
		_, err := c.Compile(newBuilder(clockModule))
		require.NoError(t, err)
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "empty"), 0o755))

	contexts, err = kontextgen.Contexts(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"dev", "prod"}, contexts)
}
