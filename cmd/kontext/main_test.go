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

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/kontext"
	"go.uber.org/kontext/kontextgen"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	goleak.VerifyTestMain(m)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func configDir(t *testing.T) string {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "base.yaml"), "database:\n  dsn: postgres://localhost\n  pool: 4\n")
	writeFile(t, filepath.Join(dir, "prod", "database.yaml"), "database:\n  dsn: postgres://${DB_HOST}\n")
	writeFile(t, filepath.Join(dir, ".env"), "DB_HOST=db.internal\n")
	return dir
}

func TestConfigShow(t *testing.T) {
	dir := configDir(t)

	tests := []struct {
		desc string
		args []string
		want string
	}{
		{
			desc: "default context",
			args: []string{"database.dsn"},
			want: "postgres://localhost\n",
		},
		{
			desc: "context override",
			args: []string{"--context", "prod", "database"},
			want: "dsn: postgres://db.internal\npool: 4\n",
		},
		{
			desc: "everything",
			args: []string{"--context", "prod"},
			want: "database:\n    dsn: postgres://db.internal\n    pool: 4\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			args := append([]string{"config", "show", "--dir", dir}, tt.args...)
			out, err := run(t, args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestConfigShowEnvironment(t *testing.T) {
	t.Setenv("KONTEXT_DIR", configDir(t))
	t.Setenv("KONTEXT_CONTEXT", "prod")

	out, err := run(t, "config", "show", "database.dsn")
	require.NoError(t, err)
	assert.Equal(t, "postgres://db.internal\n", out)

	out, err = run(t, "config", "show", "--context", "dev", "database.dsn")
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost\n", out, "flags must win over the environment")
}

func TestConfigShowErrors(t *testing.T) {
	dir := configDir(t)

	_, err := run(t, "config", "show", "--dir", dir, "database.user")
	assert.ErrorContains(t, err, `no value at "database.user"`)

	_, err = run(t, "config", "show", "--dir", filepath.Join(dir, "missing"))
	assert.Error(t, err)

	_, err = run(t, "config", "show", "--dir", dir, "a", "b")
	assert.Error(t, err)
}

type clock struct{}

func compile(t *testing.T, dir, context string) {
	t.Helper()
	b := kontext.NewBuilder()
	kontext.Bind[*clock](b).Scoped(kontext.Singleton{})
	c := kontextgen.Compiler{Dir: dir, Context: context}
	_, err := c.Compile(b)
	require.NoError(t, err)
}

func TestCacheStatus(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "cache", "status", "--cache-dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "no compiled containers\n", out)

	compile(t, dir, "prod")
	out, err = run(t, "cache", "status", "--cache-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "prod")
	assert.Contains(t, out, "fresh")
	assert.Contains(t, out, "proxies=0")

	kernel := filepath.Join(dir, "kernel.go")
	writeFile(t, kernel, "package app\n")
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(kernel, future, future))
	out, err = run(t, "cache", "status", "--cache-dir", dir, "--kernel", kernel)
	require.NoError(t, err)
	assert.Contains(t, out, "stale")

	out, err = run(t, "cache", "status", "--cache-dir", dir, "staging")
	require.NoError(t, err)
	assert.Contains(t, out, "staging")
	assert.Contains(t, out, "missing")
}

func TestCachePurge(t *testing.T) {
	dir := t.TempDir()
	compile(t, dir, "prod")
	compile(t, dir, "dev")

	out, err := run(t, "cache", "purge", "--cache-dir", dir, "prod")
	require.NoError(t, err)
	assert.Equal(t, "purged prod\n", out)

	contexts, err := kontextgen.Contexts(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"dev"}, contexts)

	out, err = run(t, "cache", "purge", "--cache-dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "purged dev\n", out)
	assert.NoFileExists(t, filepath.Join(dir, "dev", "container.go"))
}
