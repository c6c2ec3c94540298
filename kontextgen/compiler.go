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

package kontextgen

import (
	"bufio"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"go.uber.org/kontext"
	"go.uber.org/kontext/kontextevent"
	"golang.org/x/tools/imports"
)

const _tableFile = "container.go"

// Compiler writes the artifacts of a compiled container.
type Compiler struct {
	// Dir is the cache root. Artifacts go to Dir/Context.
	Dir     string
	Context string

	// KernelSource is the file configuring the builder. Artifacts older
	// than it are stale. Optional.
	KernelSource string

	// Package names the generated package. Defaults to a name derived
	// from Context.
	Package string

	Logger kontextevent.Logger
}

// Result reports what Compile did.
type Result struct {
	// Path of the generated resolution table.
	Path string

	Regenerated bool

	// Reason the artifacts were stale. Empty when they were fresh.
	Reason string

	// Proxies lists the generated adapter files by proxied type name.
	Proxies map[string]string
}

// Header is the metadata recorded at the top of a resolution table.
type Header struct {
	ModulesHash string
	ScopesHash  string
}

// Compile compiles b and writes its artifacts if they are stale.
func (c *Compiler) Compile(b *kontext.Builder) (*Result, error) {
	p, err := b.Compile()
	if err != nil {
		return nil, err
	}
	return c.CompilePlan(p)
}

// CompilePlan writes the artifacts of p if they are stale.
func (c *Compiler) CompilePlan(p *kontext.Plan) (res *Result, err error) {
	res = &Result{Path: c.Path()}
	defer func() {
		c.logger().LogEvent(&kontextevent.ContainerCompiled{
			Context: c.Context,
			Path:    res.Path,
			Reason:  res.Reason,
			Err:     err,
		})
	}()

	proxies, err := c.proxySpecs(p.ProxyTypes())
	if err != nil {
		return res, err
	}
	res.Proxies = make(map[string]string, len(proxies))
	for _, s := range proxies {
		res.Proxies[s.TypeName] = filepath.Join(c.dir(), s.File)
	}

	res.Reason, err = c.Stale(p)
	if err != nil || res.Reason == "" {
		return res, err
	}

	if err := c.Purge(); err != nil {
		return res, err
	}
	if err := os.MkdirAll(c.dir(), 0o755); err != nil {
		return res, errors.Wrapf(err, "creating %v", c.dir())
	}
	for _, s := range proxies {
		if err := c.writeProxy(s); err != nil {
			return res, err
		}
	}

	// The table goes last: a table on disk means the adapters are complete.
	src, err := tableSource(&tableData{
		Package:     c.pkg(),
		Context:     c.Context,
		ModulesHash: p.ModulesHash(),
		ScopesHash:  p.ScopesHash(),
		Entries:     p.Entries(),
	}, proxies)
	if err != nil {
		return res, errors.Wrap(err, "rendering resolution table")
	}
	if err := writeFile(res.Path, src); err != nil {
		return res, err
	}
	res.Regenerated = true
	return res, nil
}

func (c *Compiler) writeProxy(s *proxySpec) (err error) {
	path := filepath.Join(c.dir(), s.File)
	defer func() {
		c.logger().LogEvent(&kontextevent.ProxyGenerated{
			TypeName: s.TypeName,
			Path:     path,
			Err:      err,
		})
	}()

	src, err := s.source()
	if err != nil {
		return errors.Wrapf(err, "rendering proxy for %v", s.TypeName)
	}
	return writeFile(path, src)
}

// proxySpecs prepares one adapter per type. Types whose file names collide
// are rejected.
func (c *Compiler) proxySpecs(types []reflect.Type) ([]*proxySpec, error) {
	var (
		specs = make([]*proxySpec, 0, len(types))
		files = make(map[string]reflect.Type, len(types))
		names = make(map[string]bool, len(types))
	)
	for _, t := range types {
		file := ProxyFileName(t)
		if other, ok := files[file]; ok {
			return nil, errors.Errorf("proxies for %v and %v collide on %v",
				kontext.TypeName(other), kontext.TypeName(t), file)
		}
		files[file] = t

		name := exportedName(t.Name())
		stem := name
		for i := 2; names[name]; i++ {
			name = stem + strconv.Itoa(i)
		}
		names[name] = true

		s, err := newProxySpec(c.pkg(), t, name)
		if err != nil {
			return nil, errors.Wrapf(err, "proxy for %v", kontext.TypeName(t))
		}
		specs = append(specs, s)
	}
	return specs, nil
}

// Stale reports why the artifacts of p must be regenerated, or "" when they
// are fresh.
func (c *Compiler) Stale(p *kontext.Plan) (string, error) {
	info, err := os.Stat(c.Path())
	if os.IsNotExist(err) {
		return "container is missing", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "checking %v", c.Path())
	}

	if c.KernelSource != "" {
		kernel, err := os.Stat(c.KernelSource)
		if err != nil {
			return "", errors.Wrapf(err, "checking kernel source %v", c.KernelSource)
		}
		if kernel.ModTime().After(info.ModTime()) {
			return "kernel source is newer", nil
		}
	}

	h, err := ReadHeader(c.Path())
	if err != nil {
		return "header is unreadable", nil
	}
	switch {
	case h.ModulesHash != p.ModulesHash():
		return "modules changed", nil
	case h.ScopesHash != p.ScopesHash():
		return "scopes changed", nil
	}
	return "", nil
}

// Purge removes the artifacts of the context. Files it did not generate are
// kept.
func (c *Compiler) Purge() error {
	proxies, err := filepath.Glob(filepath.Join(c.dir(), "proxy_*.go"))
	if err != nil {
		return errors.WithStack(err)
	}
	for _, f := range append(proxies, c.Path()) {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "removing %v", f)
		}
	}
	return nil
}

// Path returns the path of the resolution table.
func (c *Compiler) Path() string {
	return filepath.Join(c.dir(), _tableFile)
}

func (c *Compiler) dir() string {
	return filepath.Join(c.Dir, c.Context)
}

func (c *Compiler) logger() kontextevent.Logger {
	if c.Logger == nil {
		return kontextevent.NopLogger
	}
	return c.Logger
}

func (c *Compiler) pkg() string {
	if c.Package != "" {
		return c.Package
	}
	var sb strings.Builder
	for _, r := range strings.ToLower(c.Context) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	name := sb.String()
	if name == "" || unicode.IsDigit(rune(name[0])) {
		name = "container" + name
	}
	return name
}

// ReadHeader reads the hashes recorded in a resolution table.
func ReadHeader(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, errors.Wrapf(err, "opening %v", path)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "package ") {
			break
		}
		rest, ok := strings.CutPrefix(line, _headerPrefix)
		if !ok {
			continue
		}

		var h Header
		for _, field := range strings.Fields(rest) {
			key, value, _ := strings.Cut(field, "=")
			switch key {
			case "modules":
				h.ModulesHash = value
			case "scopes":
				h.ScopesHash = value
			}
		}
		return h, nil
	}
	if err := scanner.Err(); err != nil {
		return Header{}, errors.Wrapf(err, "reading %v", path)
	}
	return Header{}, errors.Errorf("%v has no kontext header", path)
}

// format runs goimports over generated source.
func format(name, src string) ([]byte, error) {
	out, err := imports.Process(name, []byte(src), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "formatting %v", name)
	}
	return out, nil
}

// writeFile replaces path atomically.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".kontext-*")
	if err != nil {
		return errors.Wrapf(err, "writing %v", path)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "writing %v", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "writing %v", path)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return errors.Wrapf(err, "writing %v", path)
	}
	return errors.Wrapf(os.Rename(tmp.Name(), path), "writing %v", path)
}

func exportedName(name string) string {
	if name == "" {
		return "Anonymous"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
